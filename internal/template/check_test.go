package template

import (
	"testing"

	"redline/internal/domain/models/doc"
)

func heading(level int, sectionKey, title string) *doc.Heading {
	return &doc.Heading{
		BlockBase: doc.BlockBase{ID: doc.NewID("b"), SectionKey: sectionKey},
		Level:     level,
		Text:      []doc.TextRun{{Text: title}},
	}
}

var policySections = []Section{
	{Key: "purpose", DisplayName: "Purpose", ExpectedLevel: 1, Required: true},
	{Key: "scope", DisplayName: "Scope", ExpectedLevel: 1, Required: true},
	{Key: "definitions", DisplayName: "Definitions", ExpectedLevel: 1, Required: false},
	{Key: "compliance", DisplayName: "Compliance", ExpectedLevel: 1, Required: true},
}

func TestCheckMissingRequiredSection(t *testing.T) {
	headings := []*doc.Heading{
		heading(1, "purpose", "Purpose"),
		heading(1, "compliance", "Compliance"),
	}
	violations := Check(policySections, headings)
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %+v", violations)
	}
	v := violations[0]
	if v.Type != ViolationMissing || v.SectionKey != "scope" {
		t.Errorf("expected missing scope, got %+v", v)
	}
}

func TestCheckOptionalSectionAbsentIsFine(t *testing.T) {
	headings := []*doc.Heading{
		heading(1, "purpose", "Purpose"),
		heading(1, "scope", "Scope"),
		heading(1, "compliance", "Compliance"),
	}
	if violations := Check(policySections, headings); len(violations) != 0 {
		t.Errorf("expected no violations, got %+v", violations)
	}
}

func TestCheckWrongLevel(t *testing.T) {
	headings := []*doc.Heading{
		heading(1, "purpose", "Purpose"),
		heading(3, "scope", "Scope"),
		heading(1, "compliance", "Compliance"),
	}
	violations := Check(policySections, headings)
	if len(violations) != 1 {
		t.Fatalf("expected one violation, got %+v", violations)
	}
	v := violations[0]
	if v.Type != ViolationWrongLevel || v.SectionKey != "scope" || v.ExpectedLevel != 1 || v.ActualLevel != 3 {
		t.Errorf("unexpected violation %+v", v)
	}
}

func TestCheckOutOfOrder(t *testing.T) {
	headings := []*doc.Heading{
		heading(1, "scope", "Scope"),
		heading(1, "purpose", "Purpose"),
		heading(1, "compliance", "Compliance"),
	}
	violations := Check(policySections, headings)
	if len(violations) != 1 {
		t.Fatalf("expected one violation, got %+v", violations)
	}
	v := violations[0]
	if v.Type != ViolationOutOfOrder || v.SectionKey != "purpose" {
		t.Errorf("unexpected violation %+v", v)
	}
}

func TestCheckMatchesBySlugWhenSectionKeyAbsent(t *testing.T) {
	headings := []*doc.Heading{
		heading(1, "", "Purpose"),
		heading(1, "", "Scope"),
		heading(1, "", "Compliance"),
	}
	if violations := Check(policySections, headings); len(violations) != 0 {
		t.Errorf("title slugs should match section keys, got %+v", violations)
	}
}

func TestCheckIgnoresUnknownHeadings(t *testing.T) {
	headings := []*doc.Heading{
		heading(1, "purpose", "Purpose"),
		heading(2, "", "Some Appendix"),
		heading(1, "scope", "Scope"),
		heading(1, "compliance", "Compliance"),
	}
	if violations := Check(policySections, headings); len(violations) != 0 {
		t.Errorf("unknown headings are reserved for extra, not violations: %+v", violations)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Risk Assessment", "risk_assessment"},
		{"  Roles & Responsibilities  ", "roles_responsibilities"},
		{"Scope", "scope"},
		{"3. Definitions", "3_definitions"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegistryLoadsEmbeddedTemplates(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if len(r.List()) < 2 {
		t.Fatalf("expected the shipped templates, got %d", len(r.List()))
	}
	tpl, err := r.Get("policy_review")
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.Sections) == 0 || tpl.Sections[0].Key != "purpose" {
		t.Errorf("unexpected template %+v", tpl)
	}
	if _, err := r.Get("nope"); err == nil {
		t.Error("expected error for unknown template")
	}
}
