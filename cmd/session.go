package cmd

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/selection"
	"github.com/zalepa/bleaustats/stats"
)

const chartContainerID = "chart"

// areaSession owns everything the single-area view needs: the page and its
// climbs, the chart data and the selection. Selection changes re-run the
// highlight and visibility projections through the store.
type areaSession struct {
	mu sync.Mutex

	page     *parser.Page
	title    string
	right    *goquery.Selection
	climbs   []parser.Climb
	headings []parser.GradeHeading
	chart    stats.Chart

	state      selection.State
	points     []stats.ChartDataPoint
	visibility selection.Visibility
	store      *selection.Store
}

func newAreaSession(page *parser.Page, topTypes int) (*areaSession, error) {
	left, right, err := page.Columns()
	if err != nil {
		return nil, err
	}
	climbs := page.Climbs(left)
	s := &areaSession{
		page:     page,
		title:    chartTitle(page),
		right:    right,
		climbs:   climbs,
		headings: page.GradeHeadings(left),
		chart:    stats.BuildChart(climbs, topTypes),
		store:    selection.NewStore(),
	}
	s.project(selection.State{})
	s.store.OnChange(s.project)
	return s, nil
}

// project runs with s.mu held, from dispatch or before s is shared.
func (s *areaSession) project(state selection.State) {
	s.state = state
	s.points = selection.Highlight(state, s.chart.Points)
	s.visibility = selection.Project(state, s.climbs, s.headings)
	selection.ApplyVisibility(s.visibility, s.climbs, s.headings)
}

// dispatch applies e and reports whether anything changed.
func (s *areaSession) dispatch(e selection.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Dispatch(e)
}

// chartSnapshot is a consistent view of the chart and the selection that
// highlighted it.
type chartSnapshot struct {
	chart   stats.Chart
	state   selection.State
	visible int
}

func (s *areaSession) snapshot() chartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chart
	c.Points = s.points
	return chartSnapshot{chart: c, state: s.state, visible: s.visibility.Visible()}
}

// chartView is the chart as currently highlighted.
func (s *areaSession) chartView() stats.Chart {
	return s.snapshot().chart
}

// current returns the selection in effect.
func (s *areaSession) current() selection.State {
	return s.snapshot().state
}

// visibleClimbs lists the climbs the current selection leaves shown.
func (s *areaSession) visibleClimbs() []parser.Climb {
	s.mu.Lock()
	defer s.mu.Unlock()
	var shown []parser.Climb
	for i, c := range s.climbs {
		if s.visibility.Climbs[i] {
			shown = append(shown, c)
		}
	}
	return shown
}

// renderChart draws the current chart as inline SVG.
func (s *areaSession) renderChart(width, height int, barPixels float64) (string, error) {
	snap := s.snapshot()
	p, err := gradeChartPlot(snap.chart, snap.state.Empty(), barPixels)
	if err != nil {
		return "", err
	}
	return plotSVG(p, width, height)
}

// annotatedHTML renders the page with the chart injected into the sidebar
// and the current visibility applied.
func (s *areaSession) annotatedHTML(chartMarkup string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	container := s.page.Doc.Find("#" + chartContainerID)
	if container.Length() == 0 {
		container = parser.InsertChartContainer(s.right, chartContainerID)
	}
	parser.SetInnerHTML(container, chartMarkup)
	return s.page.HTML()
}

// parseSelection turns "grade:type" terms into chart events: "6s:crimpy"
// clicks a bar, ":traverse" an axis label and "7s" or "7s:" a legend entry.
func parseSelection(terms string) ([]selection.Event, error) {
	var events []selection.Event
	for _, term := range strings.Split(terms, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		gradeText, typ, _ := strings.Cut(term, ":")
		grade, err := parseGradeCategory(gradeText)
		if err != nil {
			return nil, err
		}
		typ = strings.TrimSpace(typ)
		switch {
		case grade != "" && typ != "":
			events = append(events, selection.ClickBar{Grade: grade, Type: typ})
		case typ != "":
			events = append(events, selection.ClickAxisLabel{Type: typ})
		case grade != "":
			events = append(events, selection.ClickLegendEntry{Grade: grade})
		}
	}
	return events, nil
}

func parseGradeCategory(s string) (parser.GradeCategory, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if strings.ReplaceAll(s, " ", "") == "<5" {
		return parser.GradeBelow5, nil
	}
	for _, g := range parser.GradeCategories {
		if strings.EqualFold(string(g), s) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown grade category %q", s)
}
