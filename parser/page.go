package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors describes where the catalog keeps things on its pages.
type Selectors struct {
	Container   string `yaml:"container"`
	RightColumn string `yaml:"right_column"`
	LeftColumn  string `yaml:"left_column"`
	Heading     string `yaml:"heading"`
	ClimbTag    string `yaml:"climb_tag"`
	ClimbClass  string `yaml:"climb_class"`
	Types       string `yaml:"types"`
	AreaRows    string `yaml:"area_rows"`
	SkipRows    string `yaml:"skip_rows"`
}

// DefaultSelectors matches the bleau.info page layout.
var DefaultSelectors = Selectors{
	Container:   "main div.container",
	RightColumn: ".pull-right",
	LeftColumn:  ".col-md-6",
	Heading:     "h4",
	ClimbTag:    "div",
	ClimbClass:  "vsr",
	Types:       ".btype",
	AreaRows:    ".row-same-height",
	SkipRows:    "#fav_areas_row",
}

// StructuralError reports that a page does not have the expected shape.
type StructuralError struct {
	What string
}

func (e *StructuralError) Error() string {
	return "unexpected page structure: " + e.What
}

// Page is a parsed catalog page.
type Page struct {
	Doc *goquery.Document
	URL *url.URL
	sel Selectors
}

// NewPage wraps doc. base is used to resolve relative links and may be nil.
func NewPage(doc *goquery.Document, base *url.URL, sel Selectors) *Page {
	return &Page{Doc: doc, URL: base, sel: sel}
}

// ReadPage parses raw HTML.
func ReadPage(body string, base *url.URL, sel Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return NewPage(doc, base, sel), nil
}

// Columns returns the left (climb list) and right (sidebar) columns of an
// area page.
func (p *Page) Columns() (left, right *goquery.Selection, err error) {
	main := p.Doc.Find(p.sel.Container).First()
	if main.Length() == 0 {
		return nil, nil, &StructuralError{What: "no main container " + p.sel.Container}
	}
	right = main.Find(p.sel.RightColumn).First()
	left = main.Find(p.sel.LeftColumn).Not(p.sel.RightColumn).First()
	if left.Length() == 0 || right.Length() == 0 {
		return nil, nil, &StructuralError{What: "no left/right columns"}
	}
	return left, right, nil
}

func (p *Page) isHeading(s *goquery.Selection) bool {
	return s.Is(p.sel.Heading)
}

func (p *Page) isClimb(s *goquery.Selection) bool {
	if goquery.NodeName(s) != p.sel.ClimbTag {
		return false
	}
	class, _ := s.Attr("class")
	return class == p.sel.ClimbClass
}

// RawClimbs scans the children of column top to bottom. A heading sets the
// grade for the climbs that follow it; climbs seen before any heading are
// dropped.
func (p *Page) RawClimbs(column *goquery.Selection) []RawClimb {
	var (
		raws       []RawClimb
		gradeText  string
		seenHeader bool
	)
	column.Children().Each(func(_ int, s *goquery.Selection) {
		switch {
		case p.isHeading(s):
			gradeText = strings.TrimSpace(s.Text())
			seenHeader = true
		case p.isClimb(s) && seenHeader:
			raws = append(raws, RawClimb{
				GradeText: gradeText,
				TypesText: p.typesText(s),
				Node:      s,
			})
		}
	})
	return raws
}

func (p *Page) typesText(s *goquery.Selection) string {
	types := s.Find(p.sel.Types).First()
	if types.Length() == 0 {
		return ""
	}
	return cleanText(types.Text())
}

// Climbs extracts and parses every climb of column.
func (p *Page) Climbs(column *goquery.Selection) []Climb {
	raws := p.RawClimbs(column)
	climbs := make([]Climb, len(raws))
	for i, r := range raws {
		climbs[i] = NewClimb(r)
	}
	return climbs
}

// GradeHeadings lists the heading elements of column.
func (p *Page) GradeHeadings(column *goquery.Selection) []GradeHeading {
	var headings []GradeHeading
	column.Children().Each(func(_ int, s *goquery.Selection) {
		if p.isHeading(s) {
			headings = append(headings, GradeHeading{Text: strings.TrimSpace(s.Text()), Node: s})
		}
	})
	return headings
}

// AreaClimbs is the common path for an area page: locate the columns and
// extract the climbs of the left one.
func (p *Page) AreaClimbs() ([]Climb, error) {
	left, _, err := p.Columns()
	if err != nil {
		return nil, err
	}
	return p.Climbs(left), nil
}

// AreaLinks harvests the area entries of the areas index page. Every entry
// must carry a link.
func (p *Page) AreaLinks() ([]AreaLink, error) {
	rows := p.Doc.Find(p.sel.Container + " " + p.sel.AreaRows)
	if p.sel.SkipRows != "" {
		rows = rows.Not(p.sel.SkipRows)
	}
	row := rows.First()
	if row.Length() == 0 {
		return nil, &StructuralError{What: "no area rows " + p.sel.AreaRows}
	}

	var (
		links []AreaLink
		err   error
	)
	row.Children().EachWithBreak(func(_ int, col *goquery.Selection) bool {
		col.Children().EachWithBreak(func(_ int, elem *goquery.Selection) bool {
			a := elem.Find("a").First()
			href, ok := a.Attr("href")
			if !ok {
				err = &StructuralError{What: "area entry without link"}
				return false
			}
			resolved, rerr := p.resolve(href)
			if rerr != nil {
				err = fmt.Errorf("area link %q: %w", href, rerr)
				return false
			}
			links = append(links, AreaLink{
				Name: cleanText(a.Text()),
				Href: resolved,
				Node: elem,
			})
			return true
		})
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (p *Page) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	if p.URL == nil {
		return ref.String(), nil
	}
	return p.URL.ResolveReference(ref).String(), nil
}
