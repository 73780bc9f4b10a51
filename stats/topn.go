// Package stats aggregates scraped climbs into the numbers the charts show.
package stats

import (
	"sort"

	"github.com/zalepa/bleaustats/parser"
)

// Label sizing used to decide whether a bar segment can hold its count.
const (
	LabelGutterPixels   = 50
	SmallestLabelPixels = 25
)

// GradeTypes holds every type occurrence of the climbs of one grade.
type GradeTypes struct {
	Grade parser.GradeCategory
	Types []string
}

// GroupTypesByGrade flattens the types of typed climbs per grade category.
// Groups appear in the order their grade is first encountered.
func GroupTypesByGrade(climbs []parser.Climb) []GradeTypes {
	var groups []GradeTypes
	index := make(map[parser.GradeCategory]int)
	for _, c := range climbs {
		if len(c.Types) == 0 {
			continue
		}
		i, ok := index[c.Grade]
		if !ok {
			i = len(groups)
			index[c.Grade] = i
			groups = append(groups, GradeTypes{Grade: c.Grade})
		}
		groups[i].Types = append(groups[i].Types, c.Types...)
	}
	return groups
}

// TypeCount is one entry of a Ranking.
type TypeCount struct {
	Type  string
	Count int
}

// Ranking is a list of climb types by descending frequency.
type Ranking []TypeCount

// MaxCount is the count of the most frequent type, or 0 for an empty ranking.
func (r Ranking) MaxCount() int {
	if len(r) == 0 {
		return 0
	}
	return r[0].Count
}

// Types returns the ranked type labels.
func (r Ranking) Types() []string {
	types := make([]string, len(r))
	for i, tc := range r {
		types[i] = tc.Type
	}
	return types
}

// CountTypes counts occurrences per distinct type, in first-seen order.
func CountTypes(groups []GradeTypes) Ranking {
	var counts Ranking
	index := make(map[string]int)
	for _, g := range groups {
		for _, t := range g.Types {
			i, ok := index[t]
			if !ok {
				i = len(counts)
				index[t] = i
				counts = append(counts, TypeCount{Type: t})
			}
			counts[i].Count++
		}
	}
	return counts
}

// TopN returns the n most frequent types across all groups. Types with equal
// counts keep the order they were first seen in.
func TopN(groups []GradeTypes, n int) Ranking {
	counts := CountTypes(groups)
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n < 0 {
		n = 0
	}
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// LabelVisible reports whether a segment of the given count has room for its
// label when the longest bar spans barPixels.
func LabelVisible(count, maxCount int, barPixels float64) bool {
	if maxCount <= 0 || barPixels <= 0 {
		return false
	}
	return float64(count)/float64(maxCount) > SmallestLabelPixels/barPixels
}
