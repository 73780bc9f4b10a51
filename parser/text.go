package parser

import "strings"

const canonicalTraverse = "traverse"

// ParseGradeText maps a raw grade label such as "6a+" to its category. Only
// the first non-whitespace character is considered; anything that is not a
// decimal digit yields GradeUnknown.
func ParseGradeText(text string) GradeCategory {
	text = strings.TrimSpace(text)
	if text == "" {
		return GradeUnknown
	}
	c := text[0]
	if c < '0' || c > '9' {
		return GradeUnknown
	}
	if c < '5' {
		return GradeBelow5
	}
	return GradeCategory(string(c) + "s")
}

// ParseClimbTypesString splits a comma-separated type list. Pieces are trimmed
// and empty ones dropped; every variant of "traverse" collapses to the
// canonical label. Order and duplicates are preserved.
func ParseClimbTypesString(s string) []string {
	types := []string{}
	for _, piece := range strings.Split(s, ",") {
		t := strings.TrimSpace(piece)
		if t == "" {
			continue
		}
		if strings.Contains(strings.ToLower(t), canonicalTraverse) {
			t = canonicalTraverse
		}
		types = append(types, t)
	}
	return types
}

// cleanText collapses the whitespace runs that node text picks up from
// indentation in the page source.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
