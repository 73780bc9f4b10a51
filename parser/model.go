package parser

import "github.com/PuerkitoBio/goquery"

// GradeCategory is a coarse difficulty bucket derived from the leading digit
// of a grade label.
type GradeCategory string

const (
	GradeBelow5  GradeCategory = "< 5"
	Grade5       GradeCategory = "5s"
	Grade6       GradeCategory = "6s"
	Grade7       GradeCategory = "7s"
	Grade8       GradeCategory = "8s"
	Grade9       GradeCategory = "9s"
	GradeUnknown GradeCategory = "Unknown"
)

// GradeCategories lists every category in display order.
var GradeCategories = []GradeCategory{
	GradeBelow5, Grade5, Grade6, Grade7, Grade8, Grade9, GradeUnknown,
}

// RawClimb is one climb entry as scraped, before any text parsing. Node points
// back into the source document and is only used to toggle visibility.
type RawClimb struct {
	GradeText string
	TypesText string
	Node      *goquery.Selection
}

// Climb is a RawClimb with its grade category and climb types resolved.
type Climb struct {
	RawClimb
	Grade GradeCategory
	Types []string
}

// NewClimb parses the text fields of raw.
func NewClimb(raw RawClimb) Climb {
	return Climb{
		RawClimb: raw,
		Grade:    ParseGradeText(raw.GradeText),
		Types:    ParseClimbTypesString(raw.TypesText),
	}
}

// GradeHeading is a grade heading element of an area page.
type GradeHeading struct {
	Text string
	Node *goquery.Selection
}

// Grade returns the category the heading text maps to.
func (h GradeHeading) Grade() GradeCategory {
	return ParseGradeText(h.Text)
}

// AreaLink is one entry of the areas index page.
type AreaLink struct {
	Name string
	Href string
	Node *goquery.Selection
}
