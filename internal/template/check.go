// Package template validates a document's heading structure against an
// expected ordered section template.
package template

import (
	"strings"

	"redline/internal/domain/models/doc"
)

// Section is one expected entry of a document template.
type Section struct {
	Key           string `yaml:"key" json:"key"`
	DisplayName   string `yaml:"display_name" json:"display_name"`
	ExpectedLevel int    `yaml:"expected_level" json:"expected_level"`
	Required      bool   `yaml:"required" json:"required"`
}

// Template is an ordered list of expected sections.
type Template struct {
	Name        string    `yaml:"name" json:"name"`
	DisplayName string    `yaml:"display_name" json:"display_name"`
	Sections    []Section `yaml:"sections" json:"sections"`
}

type ViolationType string

const (
	ViolationMissing    ViolationType = "missing"
	ViolationWrongLevel ViolationType = "wrong_level"
	ViolationOutOfOrder ViolationType = "out_of_order"
	// ViolationExtra is reserved for headings that match no section.
	// Nothing emits it today.
	ViolationExtra ViolationType = "extra"
)

// Violation describes one way the document deviates from its template.
type Violation struct {
	Type          ViolationType `json:"type"`
	SectionKey    string        `json:"section_key"`
	DisplayName   string        `json:"display_name,omitempty"`
	ExpectedLevel int           `json:"expected_level,omitempty"`
	ActualLevel   int           `json:"actual_level,omitempty"`
}

// Check compares the document's headings, in order, against the expected
// sections. It is a pure function of its inputs: no persisted state, safe
// to run on every document update.
//
// Ordering uses a single forward monotonic scan: a heading whose section
// appears earlier in the template than one already seen is out of order.
func Check(sections []Section, headings []*doc.Heading) []Violation {
	index := make(map[string]int, len(sections))
	for i, s := range sections {
		index[s.Key] = i
	}

	seen := make(map[string]bool, len(sections))
	levels := make(map[string]int, len(sections))
	var violations []Violation

	highWater := -1
	for _, h := range headings {
		key := h.SectionKey
		if key == "" {
			key = Slugify(doc.RunsText(h.Text))
		}
		i, ok := index[key]
		if !ok {
			continue
		}
		if !seen[key] {
			seen[key] = true
			levels[key] = h.Level
			if i < highWater {
				violations = append(violations, Violation{
					Type:        ViolationOutOfOrder,
					SectionKey:  key,
					DisplayName: sections[i].DisplayName,
				})
			} else {
				highWater = i
			}
		}
	}

	for _, s := range sections {
		if !seen[s.Key] {
			if s.Required {
				violations = append(violations, Violation{
					Type:          ViolationMissing,
					SectionKey:    s.Key,
					DisplayName:   s.DisplayName,
					ExpectedLevel: s.ExpectedLevel,
				})
			}
			continue
		}
		if s.ExpectedLevel > 0 && levels[s.Key] != s.ExpectedLevel {
			violations = append(violations, Violation{
				Type:          ViolationWrongLevel,
				SectionKey:    s.Key,
				DisplayName:   s.DisplayName,
				ExpectedLevel: s.ExpectedLevel,
				ActualLevel:   levels[s.Key],
			})
		}
	}
	return violations
}

// Slugify lowercases a heading title into a section key: "Risk Assessment"
// becomes "risk_assessment".
func Slugify(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
