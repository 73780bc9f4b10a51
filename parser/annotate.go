package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MetricsColor is the light grey the catalog uses for secondary info.
const MetricsColor = "#777"

// SetDisplay shows or hides an element by rewriting the display property of
// its inline style.
func SetDisplay(s *goquery.Selection, visible bool) {
	value := "none"
	if visible {
		value = "block"
	}
	style, _ := s.Attr("style")
	s.SetAttr("style", setStyleProperty(style, "display", value))
}

// IsHidden reports whether SetDisplay hid s.
func IsHidden(s *goquery.Selection) bool {
	style, _ := s.Attr("style")
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == "display" && strings.TrimSpace(v) == "none" {
			return true
		}
	}
	return false
}

func setStyleProperty(style, prop, value string) string {
	var decls []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		k, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(k) == prop {
			continue
		}
		decls = append(decls, decl)
	}
	decls = append(decls, prop+": "+value)
	return strings.Join(decls, "; ")
}

// InsertChartContainer adds an empty chart row to the sidebar column, as its
// second child when there is room and last otherwise. The new row is
// returned so a chart can be placed in it.
func InsertChartContainer(right *goquery.Selection, id string) *goquery.Selection {
	row := newElement("div", "class", "row", "id", id, "style", "width: 100%")
	children := right.Children()
	if children.Length() < 2 {
		right.AppendNodes(row)
	} else {
		children.Eq(1).BeforeNodes(row)
	}
	return right.Find("#" + id)
}

// PrependChartContainer adds a chart row at the top of the page container,
// used by the areas index.
func (p *Page) PrependChartContainer(id string) (*goquery.Selection, error) {
	main := p.Doc.Find(p.sel.Container).First()
	if main.Length() == 0 {
		return nil, &StructuralError{What: "no main container " + p.sel.Container}
	}
	row := newElement("div", "class", "row", "id", id, "style", "margin-top: 20px")
	main.PrependNodes(row)
	return main.Find("#" + id), nil
}

// AppendMetrics attaches a line of grey text under an area entry.
func AppendMetrics(s *goquery.Selection, text string) {
	div := newElement("div", "class", "bleaustats-metrics", "style", "color: "+MetricsColor)
	div.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	s.AppendNodes(div)
}

// SetInnerHTML replaces the content of s with trusted markup produced by
// this program, such as a rendered chart.
func SetInnerHTML(s *goquery.Selection, markup string) {
	s.SetHtml(markup)
}

// HTML renders the (possibly annotated) document.
func (p *Page) HTML() (string, error) {
	return goquery.OuterHtml(p.Doc.Selection)
}

func newElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}
