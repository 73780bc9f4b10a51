// Package selection holds the click-driven chart filter state. Transitions
// and projections are pure so they can be driven by any front end.
package selection

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/zalepa/bleaustats/parser"
)

// Filter is a partial match on a (grade, type) pair. An empty field matches
// anything.
type Filter struct {
	Grade parser.GradeCategory `json:"gradeCategory,omitempty"`
	Type  string               `json:"climbType,omitempty"`
}

// Matches reports whether every field set on f equals the given pair.
func (f Filter) Matches(grade parser.GradeCategory, typ string) bool {
	if f.Grade != "" && f.Grade != grade {
		return false
	}
	if f.Type != "" && f.Type != typ {
		return false
	}
	return true
}

// State is the accumulated list of filters. The zero value selects nothing,
// which means everything is shown.
type State struct {
	Filters []Filter `json:"selection"`
}

// Empty reports whether no filter is active.
func (s State) Empty() bool {
	return len(s.Filters) == 0
}

// Matches reports whether some filter matches the pair.
func (s State) Matches(grade parser.GradeCategory, typ string) bool {
	for _, f := range s.Filters {
		if f.Matches(grade, typ) {
			return true
		}
	}
	return false
}

// Grades returns the set of grades named by filters that carry one.
func (s State) Grades() map[parser.GradeCategory]bool {
	grades := make(map[parser.GradeCategory]bool)
	for _, f := range s.Filters {
		if f.Grade != "" {
			grades[f.Grade] = true
		}
	}
	return grades
}

// Equal compares states structurally. Nil and empty filter lists are equal.
func Equal(a, b State) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

func (s State) clone() State {
	filters := make([]Filter, len(s.Filters))
	copy(filters, s.Filters)
	return State{Filters: filters}
}

func (s State) with(f Filter) State {
	filters := make([]Filter, len(s.Filters), len(s.Filters)+1)
	copy(filters, s.Filters)
	return State{Filters: append(filters, f)}
}

// Event is a user interaction with the chart.
type Event interface {
	apply(State) State
}

// ClickBar selects one bar segment.
type ClickBar struct {
	Grade parser.GradeCategory
	Type  string
}

func (e ClickBar) apply(s State) State {
	return s.with(Filter{Grade: e.Grade, Type: e.Type})
}

// ClickAxisLabel selects a type across every grade.
type ClickAxisLabel struct {
	Type string
}

func (e ClickAxisLabel) apply(s State) State {
	return s.with(Filter{Type: e.Type})
}

// ClickLegendEntry selects every type of a grade.
type ClickLegendEntry struct {
	Grade parser.GradeCategory
}

func (e ClickLegendEntry) apply(s State) State {
	return s.with(Filter{Grade: e.Grade})
}

// ClickEmptyArea clears the selection.
type ClickEmptyArea struct{}

func (ClickEmptyArea) apply(State) State {
	return State{Filters: []Filter{}}
}

// Reset clears the selection.
type Reset struct{}

func (Reset) apply(State) State {
	return State{Filters: []Filter{}}
}

// Apply returns the state that follows s after e. s is left untouched.
func Apply(s State, e Event) State {
	return e.apply(s)
}
