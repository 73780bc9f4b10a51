package stats

import "github.com/zalepa/bleaustats/parser"

// ChartDataPoint is one (grade, type) cell of the chart grid.
type ChartDataPoint struct {
	Grade      parser.GradeCategory `json:"gradeCategory"`
	Type       string               `json:"climbType"`
	Count      int                  `json:"count"`
	IsSelected bool                 `json:"isSelected"`
}

// Chart is the dense grade × type matrix behind the stacked bar chart.
type Chart struct {
	Grades  []parser.GradeCategory `json:"grades"`
	Ranking Ranking                `json:"-"`
	Types   []string               `json:"types"`
	Points  []ChartDataPoint       `json:"points"`
}

// MaxCount is the count of the top ranked type.
func (c Chart) MaxCount() int {
	return c.Ranking.MaxCount()
}

// Segment returns the point for grade and type.
func (c Chart) Segment(grade parser.GradeCategory, typ string) (ChartDataPoint, bool) {
	for _, p := range c.Points {
		if p.Grade == grade && p.Type == typ {
			return p, true
		}
	}
	return ChartDataPoint{}, false
}

// BuildChart ranks the n most frequent types and lays out one point per
// present grade and ranked type, zero counts included. Grades follow
// parser.GradeCategories order.
func BuildChart(climbs []parser.Climb, n int) Chart {
	groups := GroupTypesByGrade(climbs)
	ranking := TopN(groups, n)

	counts := make(map[parser.GradeCategory]map[string]int, len(groups))
	for _, g := range groups {
		byType := make(map[string]int)
		for _, t := range g.Types {
			byType[t]++
		}
		counts[g.Grade] = byType
	}

	chart := Chart{Ranking: ranking, Types: ranking.Types()}
	for _, grade := range parser.GradeCategories {
		byType, ok := counts[grade]
		if !ok {
			continue
		}
		chart.Grades = append(chart.Grades, grade)
		for _, tc := range ranking {
			chart.Points = append(chart.Points, ChartDataPoint{
				Grade:      grade,
				Type:       tc.Type,
				Count:      byType[tc.Type],
				IsSelected: true,
			})
		}
	}
	return chart
}
