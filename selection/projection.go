package selection

import (
	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/stats"
)

// Highlight returns a copy of points with IsSelected recomputed for s. With
// an empty selection every point counts as selected.
func Highlight(s State, points []stats.ChartDataPoint) []stats.ChartDataPoint {
	out := make([]stats.ChartDataPoint, len(points))
	for i, p := range points {
		p.IsSelected = s.Empty() || s.Matches(p.Grade, p.Type)
		out[i] = p
	}
	return out
}

// Visibility is the shown/hidden flag of every climb and heading, index
// aligned with the slices it was computed from.
type Visibility struct {
	Climbs   []bool
	Headings []bool
}

// Visible counts the climbs left visible.
func (v Visibility) Visible() int {
	n := 0
	for _, shown := range v.Climbs {
		if shown {
			n++
		}
	}
	return n
}

// ClimbVisible reports whether a climb stays visible under s: some type of
// the climb, paired with its grade, has to match a filter.
func ClimbVisible(s State, c parser.Climb) bool {
	if s.Empty() {
		return true
	}
	for _, t := range c.Types {
		if s.Matches(c.Grade, t) {
			return true
		}
	}
	return false
}

// Project computes the visibility of climbs and headings under s. A heading
// is hidden only when some filter names a grade and none names its own.
func Project(s State, climbs []parser.Climb, headings []parser.GradeHeading) Visibility {
	v := Visibility{
		Climbs:   make([]bool, len(climbs)),
		Headings: make([]bool, len(headings)),
	}
	for i, c := range climbs {
		v.Climbs[i] = ClimbVisible(s, c)
	}
	grades := s.Grades()
	for i, h := range headings {
		v.Headings[i] = len(grades) == 0 || grades[h.Grade()]
	}
	return v
}

// ApplyVisibility writes v onto the page elements.
func ApplyVisibility(v Visibility, climbs []parser.Climb, headings []parser.GradeHeading) {
	for i, c := range climbs {
		if c.Node != nil {
			parser.SetDisplay(c.Node, v.Climbs[i])
		}
	}
	for i, h := range headings {
		if h.Node != nil {
			parser.SetDisplay(h.Node, v.Headings[i])
		}
	}
}
