package parser

import (
	"reflect"
	"testing"
)

func TestParseGradeText(t *testing.T) {
	tests := []struct {
		input string
		want  GradeCategory
	}{
		{"6a", Grade6},
		{"6A+", Grade6},
		{"  7b", Grade7},
		{"8c+", Grade8},
		{"9a", Grade9},
		{"5+", Grade5},
		{"3x", GradeBelow5},
		{"0", GradeBelow5},
		{"4c", GradeBelow5},
		{"V-something", GradeUnknown},
		{"V3", GradeUnknown},
		{"?", GradeUnknown},
		{"", GradeUnknown},
		{"   ", GradeUnknown},
		{"６a", GradeUnknown},
	}
	for _, tt := range tests {
		got := ParseGradeText(tt.input)
		if got != tt.want {
			t.Errorf("ParseGradeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseClimbTypesString(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Traverse, crimpy, TRAVERSE ", []string{"traverse", "crimpy", "traverse"}},
		{"", []string{}},
		{" , ,", []string{}},
		{"slopers", []string{"slopers"}},
		{"low start,sit start traverse", []string{"low start", "traverse"}},
		{"crimpy, crimpy", []string{"crimpy", "crimpy"}},
		{"  Dyno ,", []string{"Dyno"}},
	}
	for _, tt := range tests {
		got := ParseClimbTypesString(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseClimbTypesString(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseClimbTypesStringNeverEmpty(t *testing.T) {
	for _, input := range []string{",", ", ,a,,b, ", "\t,\n"} {
		for _, typ := range ParseClimbTypesString(input) {
			if typ == "" {
				t.Errorf("ParseClimbTypesString(%q) produced an empty type", input)
			}
		}
	}
}

func TestCleanText(t *testing.T) {
	got := cleanText("\n\t  crimpy,\n   traverse  ")
	if got != "crimpy, traverse" {
		t.Errorf("cleanText = %q", got)
	}
}
