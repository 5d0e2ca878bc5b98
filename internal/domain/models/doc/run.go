package doc

import (
	"slices"
	"strings"
)

// MarkStatus is the visual state of an AI-suggestion mark carried by a run.
// It is distinct from SuggestionStatus: a pending suggestion renders as
// "suggested", an accepted one as "applied".
type MarkStatus string

const (
	MarkSuggested MarkStatus = "suggested"
	MarkApplied   MarkStatus = "applied"
	MarkRejected  MarkStatus = "rejected"
)

// TextRun is a contiguous span of text sharing one formatting state.
// CommentIDs and the suggestion mark are decoration metadata: they tag the
// covered characters without changing the text itself.
type TextRun struct {
	Text             string     `json:"text"`
	Bold             bool       `json:"bold,omitempty"`
	Italic           bool       `json:"italic,omitempty"`
	Underline        bool       `json:"underline,omitempty"`
	Code             bool       `json:"code,omitempty"`
	SuggestionID     string     `json:"suggestion_id,omitempty"`
	SuggestionStatus MarkStatus `json:"suggestion_status,omitempty"`
	CommentIDs       []string   `json:"comment_ids,omitempty"`
}

// Len returns the run's text length in runes. Offsets throughout the editor
// are rune counts, not byte counts.
func (r TextRun) Len() int {
	return len([]rune(r.Text))
}

// SameFormat reports whether two runs carry an identical formatting set,
// including decoration metadata. Runs that differ only in text are mergeable.
func (r TextRun) SameFormat(o TextRun) bool {
	return r.Bold == o.Bold &&
		r.Italic == o.Italic &&
		r.Underline == o.Underline &&
		r.Code == o.Code &&
		r.SuggestionID == o.SuggestionID &&
		r.SuggestionStatus == o.SuggestionStatus &&
		sameIDSet(r.CommentIDs, o.CommentIDs)
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

// MergeRuns merges consecutive runs whose formatting set is identical and
// drops empty runs, reducing persisted fragmentation. A fully empty input
// (or one that collapses to nothing) yields a single empty run, never an
// empty slice. Idempotent: merging twice equals merging once.
func MergeRuns(runs []TextRun) []TextRun {
	merged := make([]TextRun, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(merged); n > 0 && merged[n-1].SameFormat(r) {
			merged[n-1].Text += r.Text
			continue
		}
		// Clone the id slice so later mutation of one run cannot alias another.
		r.CommentIDs = slices.Clone(r.CommentIDs)
		merged = append(merged, r)
	}
	if len(merged) == 0 {
		return []TextRun{{}}
	}
	return merged
}

// RunsText returns the concatenated text of runs in order.
func RunsText(runs []TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// RunsLen returns the total rune length of runs.
func RunsLen(runs []TextRun) int {
	n := 0
	for _, r := range runs {
		n += r.Len()
	}
	return n
}

// SplitRuns splits runs at the rune offsets start and end, so that
// [start, end) is covered by whole runs. Offsets are clamped to the text
// bounds. Returns the split slice plus the index range [from, to) of the
// runs covering the interval.
func SplitRuns(runs []TextRun, start, end int) (out []TextRun, from, to int) {
	total := RunsLen(runs)
	start = clamp(start, 0, total)
	end = clamp(end, start, total)

	out = make([]TextRun, 0, len(runs)+2)
	pos := 0
	for _, r := range runs {
		segs := splitRunAt(r, relativeCuts(pos, r.Len(), start, end))
		pos += r.Len()
		out = append(out, segs...)
	}

	// Boundaries now fall between runs: [from, to) is the covering range.
	from, to = -1, -1
	pos = 0
	for i := range out {
		if from == -1 && pos >= start {
			from = i
		}
		if to == -1 && pos >= end {
			to = i
		}
		pos += out[i].Len()
	}
	if from == -1 {
		from = len(out)
	}
	if to == -1 {
		to = len(out)
	}
	return out, from, to
}

// relativeCuts converts absolute cut offsets into offsets local to a run
// spanning [pos, pos+rl).
func relativeCuts(pos, rl, start, end int) []int {
	var cuts []int
	for _, abs := range []int{start, end} {
		rel := abs - pos
		if rel > 0 && rel < rl {
			cuts = append(cuts, rel)
		}
	}
	return cuts
}

func splitRunAt(r TextRun, cuts []int) []TextRun {
	if len(cuts) == 0 {
		return []TextRun{r}
	}
	text := []rune(r.Text)
	var out []TextRun
	prev := 0
	for _, c := range cuts {
		if c <= prev || c >= len(text) {
			continue
		}
		seg := r
		seg.Text = string(text[prev:c])
		seg.CommentIDs = slices.Clone(r.CommentIDs)
		out = append(out, seg)
		prev = c
	}
	last := r
	last.Text = string(text[prev:])
	last.CommentIDs = slices.Clone(r.CommentIDs)
	out = append(out, last)
	return out
}

// SpliceRuns replaces the rune interval [start, end) with replacement text.
// The replacement inherits the formatting of the run containing start (or
// the first run when the interval is empty at the front). Decoration
// metadata is not inherited: spliced-in text starts unmarked except for the
// suggestion mark the caller sets afterwards. The result is re-merged.
func SpliceRuns(runs []TextRun, start, end int, replacement string) []TextRun {
	split, from, to := SplitRuns(runs, start, end)

	var inherit TextRun
	switch {
	case from < len(split):
		inherit = split[from]
	case len(split) > 0:
		inherit = split[len(split)-1]
	}

	repl := TextRun{
		Text:      replacement,
		Bold:      inherit.Bold,
		Italic:    inherit.Italic,
		Underline: inherit.Underline,
		Code:      inherit.Code,
	}

	out := make([]TextRun, 0, len(split)+1)
	out = append(out, split[:from]...)
	if replacement != "" {
		out = append(out, repl)
	}
	out = append(out, split[to:]...)
	return MergeRuns(out)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
