package parser

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readTestPage(t *testing.T, name, base string) *Page {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	u, err := url.Parse(base)
	require.NoError(t, err)
	p, err := ReadPage(string(data), u, DefaultSelectors)
	require.NoError(t, err)
	return p
}

func columnPage(t *testing.T, column string) *Page {
	t.Helper()
	body := `<main><div class="container"><div class="col-md-6 pull-right"></div>` +
		`<div class="col-md-6">` + column + `</div></div></main>`
	p, err := ReadPage(body, nil, DefaultSelectors)
	require.NoError(t, err)
	return p
}

func TestRawClimbsHeadingStateMachine(t *testing.T) {
	p := columnPage(t,
		`<h4>6a</h4><div class="vsr"><p class="btype">a</p></div>`+
			`<h4>7a</h4><div class="vsr"><p class="btype">b</p></div>`)
	left, _, err := p.Columns()
	require.NoError(t, err)

	raws := p.RawClimbs(left)
	require.Len(t, raws, 2)
	require.Equal(t, "6a", raws[0].GradeText)
	require.Equal(t, "a", raws[0].TypesText)
	require.Equal(t, "7a", raws[1].GradeText)
	require.Equal(t, "b", raws[1].TypesText)
}

func TestRawClimbsDropsClimbsBeforeHeading(t *testing.T) {
	p := columnPage(t, `<div class="vsr"><p class="btype">early</p></div><div class="vsr"></div>`)
	left, _, err := p.Columns()
	require.NoError(t, err)
	require.Empty(t, p.RawClimbs(left))
}

func TestAreaClimbs(t *testing.T) {
	p := readTestPage(t, "area.html", "https://bleau.info/apremont")

	climbs, err := p.AreaClimbs()
	require.NoError(t, err)

	type summary struct {
		grade GradeCategory
		text  string
		types []string
	}
	want := []summary{
		{Grade6, "6a", []string{"traverse", "crimpy"}},
		{Grade6, "6a", []string{"slopers", "crimpy"}},
		{Grade7, "7a", []string{"slopers"}},
		{Grade7, "7a", []string{}},
		{GradeBelow5, "3b", []string{"traverse"}},
	}
	require.Len(t, climbs, len(want))
	for i, w := range want {
		require.Equal(t, w.grade, climbs[i].Grade, "climb %d", i)
		require.Equal(t, w.text, climbs[i].GradeText, "climb %d", i)
		require.Equal(t, w.types, climbs[i].Types, "climb %d", i)
		require.NotNil(t, climbs[i].Node)
	}
}

func TestGradeHeadings(t *testing.T) {
	p := readTestPage(t, "area.html", "https://bleau.info/apremont")
	left, _, err := p.Columns()
	require.NoError(t, err)

	headings := p.GradeHeadings(left)
	require.Len(t, headings, 3)
	require.Equal(t, "6a", headings[0].Text)
	require.Equal(t, Grade7, headings[1].Grade())
	require.Equal(t, GradeBelow5, headings[2].Grade())
}

func TestColumnsStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no container", `<main><div class="col-md-6"></div></main>`},
		{"no right column", `<main><div class="container"><div class="col-md-6"></div></div></main>`},
		{"no left column", `<main><div class="container"><div class="col-md-6 pull-right"></div></div></main>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadPage(tt.body, nil, DefaultSelectors)
			require.NoError(t, err)
			_, _, err = p.Columns()
			var serr *StructuralError
			require.True(t, errors.As(err, &serr), "got %v", err)
		})
	}
}

func TestAreaLinks(t *testing.T) {
	p := readTestPage(t, "areas.html", "https://bleau.info/areas")

	links, err := p.AreaLinks()
	require.NoError(t, err)
	require.Len(t, links, 3)
	require.Equal(t, "https://bleau.info/apremont", links[0].Href)
	require.Equal(t, "Apremont", links[0].Name)
	require.Equal(t, "https://bleau.info/cuvier", links[1].Href)
	require.Equal(t, "https://example.org/elephant", links[2].Href)
}

func TestAreaLinksMissingAnchor(t *testing.T) {
	body := `<main><div class="container"><div class="row-same-height">` +
		`<div class="col"><div class="area">no link</div></div></div></div></main>`
	p, err := ReadPage(body, nil, DefaultSelectors)
	require.NoError(t, err)

	_, err = p.AreaLinks()
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
}

func TestSetDisplay(t *testing.T) {
	p := columnPage(t, `<h4 style="color: red; display:block">6a</h4>`)
	h := p.Doc.Find("h4")

	SetDisplay(h, false)
	require.True(t, IsHidden(h))
	style, _ := h.Attr("style")
	require.Equal(t, "color: red; display: none", style)

	SetDisplay(h, true)
	require.False(t, IsHidden(h))
}

func TestInsertChartContainer(t *testing.T) {
	p := readTestPage(t, "area.html", "https://bleau.info/apremont")
	_, right, err := p.Columns()
	require.NoError(t, err)

	row := InsertChartContainer(right, "chart")
	require.Equal(t, 1, row.Length())
	require.Equal(t, "chart", right.Children().Eq(1).AttrOr("id", ""))

	SetInnerHTML(row, "<svg></svg>")
	out, err := p.HTML()
	require.NoError(t, err)
	require.True(t, strings.Contains(out, `<div class="row" id="chart" style="width: 100%"><svg></svg></div>`), out)
}

func TestInsertChartContainerSmallColumn(t *testing.T) {
	p := columnPage(t, "")
	_, right, err := p.Columns()
	require.NoError(t, err)

	InsertChartContainer(right, "chart")
	require.Equal(t, "chart", right.Children().Last().AttrOr("id", ""))
}

func TestAppendMetrics(t *testing.T) {
	p := readTestPage(t, "areas.html", "https://bleau.info/areas")
	links, err := p.AreaLinks()
	require.NoError(t, err)

	AppendMetrics(links[0].Node, "12 - crimpy, slopers")
	metrics := links[0].Node.Find(".bleaustats-metrics")
	require.Equal(t, "12 - crimpy, slopers", metrics.Text())
	require.Equal(t, "color: #777", metrics.AttrOr("style", ""))

	row, err := p.PrependChartContainer("distribution_chart")
	require.NoError(t, err)
	require.Equal(t, "distribution_chart", p.Doc.Find("main div.container").Children().First().AttrOr("id", ""))
	require.Equal(t, 1, row.Length())
}

func TestChartContainersAcceptMarkup(t *testing.T) {
	p := readTestPage(t, "areas.html", "https://bleau.info/areas")
	row, err := p.PrependChartContainer("distribution_chart")
	require.NoError(t, err)

	require.NotPanics(t, func() { SetInnerHTML(row, `<svg width="10"><rect></rect></svg>`) })
	require.Equal(t, 1, row.Find("svg rect").Length())

	for _, tag := range []string{"div", "span", "p"} {
		n := newElement(tag)
		require.Equal(t, tag, n.DataAtom.String())
	}
}
