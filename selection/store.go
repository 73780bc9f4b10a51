package selection

import "sync"

// Store owns the current selection and re-runs the registered projections
// whenever it changes. It is safe for concurrent use; projections run with
// the store locked, in registration order.
type Store struct {
	mu        sync.Mutex
	state     State
	onChanged []func(State)
}

// NewStore returns a store with an empty selection.
func NewStore() *Store {
	return &Store{state: State{Filters: []Filter{}}}
}

// OnChange registers a projection.
func (st *Store) OnChange(fn func(State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onChanged = append(st.onChanged, fn)
}

// State returns a copy of the current state.
func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

// Dispatch applies e. It reports false, without running any projection, when
// the resulting state equals the current one.
func (st *Store) Dispatch(e Event) bool {
	return st.Update(func(s State) State { return Apply(s, e) })
}

// Set replaces the state.
func (st *Store) Set(next State) bool {
	return st.Update(func(State) State { return next })
}

// Update computes the next state from the current one.
func (st *Store) Update(fn func(State) State) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := fn(st.state)
	if Equal(st.state, next) {
		return false
	}
	st.state = next
	for _, project := range st.onChanged {
		project(next)
	}
	return true
}
