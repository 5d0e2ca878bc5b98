// Package convert maps between the persisted flat block-metadata format,
// the in-memory block tree, and markdown.
package convert

import (
	"errors"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"redline/internal/domain/models/doc"
)

var stripPolicy = bluemonday.StrictPolicy()

// inlineFormat tracks the open formatting tags while tokenizing.
type inlineFormat struct {
	bold, italic, underline, code int
}

func (f inlineFormat) run(text string) doc.TextRun {
	return doc.TextRun{
		Text:      text,
		Bold:      f.bold > 0,
		Italic:    f.italic > 0,
		Underline: f.underline > 0,
		Code:      f.code > 0,
	}
}

// ParseInlineHTML tokenizes an HTML-bearing content string into formatted
// runs. Recognized marks: strong/b, em/i, u, code; every other tag is
// ignored but its text kept. Malformed markup falls back to a single
// unformatted run of the tag-stripped text, so a bad block never loses its
// content.
func ParseInlineHTML(content string) []doc.TextRun {
	tok := html.NewTokenizer(strings.NewReader(content))
	var (
		runs  []doc.TextRun
		state inlineFormat
	)
	for {
		switch tok.Next() {
		case html.ErrorToken:
			if errors.Is(tok.Err(), io.EOF) {
				return doc.MergeRuns(runs)
			}
			return []doc.TextRun{{Text: StripTags(content)}}
		case html.TextToken:
			if text := string(tok.Text()); text != "" {
				runs = append(runs, state.run(text))
			}
		case html.StartTagToken:
			name, _ := tok.TagName()
			state.adjust(string(name), 1)
		case html.EndTagToken:
			name, _ := tok.TagName()
			state.adjust(string(name), -1)
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			// No text contribution.
		}
	}
}

func (f *inlineFormat) adjust(tag string, delta int) {
	switch tag {
	case "strong", "b":
		f.bold = max(0, f.bold+delta)
	case "em", "i":
		f.italic = max(0, f.italic+delta)
	case "u":
		f.underline = max(0, f.underline+delta)
	case "code":
		f.code = max(0, f.code+delta)
	}
}

// RenderInlineHTML is the inverse of ParseInlineHTML: it renders runs back
// into a canonical HTML-bearing string (`<strong>`, `<em>`, `<u>`, `<code>`,
// nested in that fixed order). Decoration metadata is not rendered; the
// persisted form carries content, not highlights.
func RenderInlineHTML(runs []doc.TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		open, close := inlineTags(r)
		b.WriteString(open)
		b.WriteString(html.EscapeString(r.Text))
		b.WriteString(close)
	}
	return b.String()
}

func inlineTags(r doc.TextRun) (open, close string) {
	type mark struct {
		on  bool
		tag string
	}
	for _, m := range []mark{
		{r.Bold, "strong"},
		{r.Italic, "em"},
		{r.Underline, "u"},
		{r.Code, "code"},
	} {
		if m.on {
			open += "<" + m.tag + ">"
			close = "</" + m.tag + ">" + close
		}
	}
	return open, close
}

// Plain reports whether every run is unformatted, in which case the
// persisted content can stay a plain string.
func Plain(runs []doc.TextRun) bool {
	for _, r := range runs {
		if r.Bold || r.Italic || r.Underline || r.Code {
			return false
		}
	}
	return true
}

// StripTags removes all markup, keeping text only. Recovery path for
// content that cannot be parsed into runs.
func StripTags(content string) string {
	return html.UnescapeString(stripPolicy.Sanitize(content))
}
