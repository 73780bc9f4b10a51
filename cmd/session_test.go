package cmd

import (
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/selection"
)

func readPage(t *testing.T, name, base string) *parser.Page {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	u, err := url.Parse(base)
	require.NoError(t, err)
	p, err := parser.ReadPage(string(data), u, parser.DefaultSelectors)
	require.NoError(t, err)
	return p
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		terms string
		want []selection.Event
	}{
		{"", nil},
		{"6s:crimpy", []selection.Event{selection.ClickBar{Grade: parser.Grade6, Type: "crimpy"}}},
		{":traverse", []selection.Event{selection.ClickAxisLabel{Type: "traverse"}}},
		{"7s", []selection.Event{selection.ClickLegendEntry{Grade: parser.Grade7}}},
		{"7s:", []selection.Event{selection.ClickLegendEntry{Grade: parser.Grade7}}},
		{" <5 : slopers , unknown", []selection.Event{
			selection.ClickBar{Grade: parser.GradeBelow5, Type: "slopers"},
			selection.ClickLegendEntry{Grade: parser.GradeUnknown},
		}},
		{",,", nil},
	}
	for _, tt := range tests {
		got, err := parseSelection(tt.terms)
		if err != nil {
			t.Errorf("parseSelection(%q): %v", tt.terms, err)
			continue
		}
		require.Equal(t, tt.want, got, "parseSelection(%q)", tt.terms)
	}
}

func TestParseSelectionRejectsUnknownGrade(t *testing.T) {
	_, err := parseSelection("6a:crimpy")
	require.Error(t, err)
}

func TestParseGradeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want parser.GradeCategory
	}{
		{"< 5", parser.GradeBelow5},
		{"<5", parser.GradeBelow5},
		{"5s", parser.Grade5},
		{"9S", parser.Grade9},
		{"Unknown", parser.GradeUnknown},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := parseGradeCategory(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseGradeCategory(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestAreaSessionStartsNeutral(t *testing.T) {
	s, err := newAreaSession(readPage(t, "area.html", "https://bleau.info/apremont"), 10)
	require.NoError(t, err)

	chart := s.chartView()
	require.Equal(t, []parser.GradeCategory{parser.GradeBelow5, parser.Grade6, parser.Grade7}, chart.Grades)
	require.Equal(t, []string{"traverse", "crimpy", "slopers"}, chart.Types)
	for _, p := range chart.Points {
		require.True(t, p.IsSelected)
	}
	require.Len(t, s.visibleClimbs(), len(s.climbs))
	require.True(t, s.current().Empty())
}

func TestAreaSessionBarSelection(t *testing.T) {
	s, err := newAreaSession(readPage(t, "area.html", "https://bleau.info/apremont"), 10)
	require.NoError(t, err)

	require.True(t, s.dispatch(selection.ClickBar{Grade: parser.Grade6, Type: "crimpy"}))

	for _, p := range s.chartView().Points {
		want := p.Grade == parser.Grade6 && p.Type == "crimpy"
		require.Equal(t, want, p.IsSelected, "%s/%s", p.Grade, p.Type)
	}
	shown := s.visibleClimbs()
	require.Len(t, shown, 2)
	for _, c := range shown {
		require.Equal(t, parser.Grade6, c.Grade)
	}

	for _, h := range s.headings {
		require.Equal(t, h.Grade() != parser.Grade6, parser.IsHidden(h.Node), h.Text)
	}
	for _, c := range s.climbs {
		require.Equal(t, c.Grade != parser.Grade6, parser.IsHidden(c.Node))
	}

	require.True(t, s.dispatch(selection.Reset{}))
	require.Len(t, s.visibleClimbs(), len(s.climbs))
	for _, h := range s.headings {
		require.False(t, parser.IsHidden(h.Node))
	}
}

func TestAreaSessionAxisSelectionKeepsHeadings(t *testing.T) {
	s, err := newAreaSession(readPage(t, "area.html", "https://bleau.info/apremont"), 10)
	require.NoError(t, err)

	s.dispatch(selection.ClickAxisLabel{Type: "traverse"})

	shown := s.visibleClimbs()
	require.Len(t, shown, 2)
	require.Equal(t, parser.Grade6, shown[0].Grade)
	require.Equal(t, parser.GradeBelow5, shown[1].Grade)
	for _, h := range s.headings {
		require.False(t, parser.IsHidden(h.Node), "heading %s", h.Text)
	}
}

func TestAreaSessionRepeatedResetIsNoChange(t *testing.T) {
	s, err := newAreaSession(readPage(t, "area.html", "https://bleau.info/apremont"), 10)
	require.NoError(t, err)
	require.False(t, s.dispatch(selection.Reset{}))
	require.False(t, s.dispatch(selection.ClickEmptyArea{}))
}

func TestAnnotatedHTMLPlacesChartOnce(t *testing.T) {
	page := readPage(t, "area.html", "https://bleau.info/apremont")
	s, err := newAreaSession(page, 10)
	require.NoError(t, err)

	_, err = s.annotatedHTML("<svg>first</svg>")
	require.NoError(t, err)
	doc, err := s.annotatedHTML("<svg>second</svg>")
	require.NoError(t, err)

	require.Equal(t, 1, strings.Count(doc, `id="chart"`))
	require.NotContains(t, doc, "first")
	require.Contains(t, doc, "<svg>second</svg>")

	second := page.Doc.Find(".pull-right").Children().Eq(1)
	id, _ := second.Attr("id")
	require.Equal(t, chartContainerID, id)
}

func TestRenderChartSVG(t *testing.T) {
	s, err := newAreaSession(readPage(t, "area.html", "https://bleau.info/apremont"), 10)
	require.NoError(t, err)
	s.dispatch(selection.ClickLegendEntry{Grade: parser.Grade7})

	svg, err := s.renderChart(600, 400, 550)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(svg, "<svg"), svg[:min(len(svg), 40)])
	require.Contains(t, svg, "traverse")
}

func TestChartTitle(t *testing.T) {
	page := readPage(t, "area.html", "https://bleau.info/apremont")
	require.Equal(t, "Apremont - climb types by grade", chartTitle(page))

	bare, err := parser.ReadPage("<main></main>", nil, parser.DefaultSelectors)
	require.NoError(t, err)
	require.Equal(t, "climb types by grade", chartTitle(bare))

	u, _ := url.Parse("https://bleau.info/cuvier")
	untitled, err := parser.ReadPage("<main></main>", u, parser.DefaultSelectors)
	require.NoError(t, err)
	require.Equal(t, "https://bleau.info/cuvier - climb types by grade", chartTitle(untitled))
}

func TestSnapshotIsConsistentUnderDispatch(t *testing.T) {
	s, err := newAreaSession(readPage(t, "area.html", "https://bleau.info/apremont"), 10)
	require.NoError(t, err)
	base := s.chart.Points

	events := []selection.Event{
		selection.ClickBar{Grade: parser.Grade6, Type: "crimpy"},
		selection.ClickAxisLabel{Type: "slopers"},
		selection.Reset{},
		selection.ClickLegendEntry{Grade: parser.Grade7},
		selection.ClickEmptyArea{},
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.dispatch(events[i%len(events)])
		}
	}()

	for i := 0; i < 200; i++ {
		snap := s.snapshot()
		require.Equal(t, selection.Highlight(snap.state, base), snap.chart.Points)
	}
	<-done
}
