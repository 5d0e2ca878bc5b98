package editor

import (
	"log/slog"
	"slices"
	"strings"

	"redline/internal/domain/models/doc"
)

// Engine overlays comment and suggestion decorations onto a document's text
// runs. Decoration never mutates semantic content: a decorated range keeps
// its text and formatting and only gains comment ids or a suggestion mark.
// The one intentional exception is ReplaceTextBySuggestionID, the real
// content splice performed when a suggestion is accepted.
//
// Every operation tolerates stale anchors: a highlight whose block is gone
// or whose text was edited away is logged and skipped, never fatal. When
// stored offsets no longer match, anchor recovery takes the first occurrence
// of the anchor text; unlike selection resolution there is no cursor position
// here to pick a closer occurrence against.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// CommentHighlight anchors one comment to a text range. BlockIDs carries the
// ordered block set for a multi-block selection; when empty the comment
// covers [StartOffset, EndOffset) within BlockID alone.
type CommentHighlight struct {
	CommentID    string
	BlockID      string
	SelectedText string
	StartOffset  int
	EndOffset    int
	BlockIDs     []string
}

// SuggestionHighlight anchors one suggestion mark. Offsets are optional;
// when absent or stale the engine falls back to searching for Text.
type SuggestionHighlight struct {
	SuggestionID string
	BlockID      string
	Text         string
	Status       doc.MarkStatus
	StartOffset  *int
	EndOffset    *int
}

// ApplyCommentHighlight tags the covered characters with the comment id.
// Overlapping comments accumulate: one span of text may carry several ids,
// and re-applying the same highlight leaves a single mark. Returns false
// when no anchor could be located.
func (e *Engine) ApplyCommentHighlight(state *doc.State, h CommentHighlight) bool {
	blocks := h.BlockIDs
	if len(blocks) == 0 {
		blocks = []string{h.BlockID}
	}
	tagged := false
	for i, blockID := range blocks {
		block := state.BlockByID(blockID)
		if block == nil {
			e.logger.Warn("comment highlight references missing block",
				"comment_id", h.CommentID, "block_id", blockID)
			continue
		}
		slots := doc.RunSlots(block)
		total := slotsLen(slots)

		// First block starts at the selection start, last ends at the
		// selection end, middle blocks are covered whole.
		var start, end int
		if len(blocks) == 1 {
			var ok bool
			start, end, ok = locateRange(slots, h.SelectedText, &h.StartOffset, &h.EndOffset)
			if !ok {
				e.logger.Warn("comment highlight anchor not found, skipping",
					"comment_id", h.CommentID, "block_id", blockID)
				continue
			}
		} else {
			start, end = 0, total
			if i == 0 {
				start = h.StartOffset
			}
			if i == len(blocks)-1 {
				end = h.EndOffset
			}
		}
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start >= end {
			continue
		}
		markSlots(slots, start, end, func(r *doc.TextRun) {
			if !slices.Contains(r.CommentIDs, h.CommentID) {
				r.CommentIDs = append(r.CommentIDs, h.CommentID)
			}
		})
		tagged = true
	}
	return tagged
}

// RemoveCommentHighlight strips the id from every run in the document.
// Runs whose id set empties revert to unmarked and re-merge with their
// neighbors.
func (e *Engine) RemoveCommentHighlight(state *doc.State, commentID string) {
	forEachSlot(state, func(slot *[]doc.TextRun) {
		changed := false
		runs := *slot
		for i := range runs {
			if slices.Contains(runs[i].CommentIDs, commentID) {
				ids := slices.DeleteFunc(slices.Clone(runs[i].CommentIDs), func(id string) bool {
					return id == commentID
				})
				if len(ids) == 0 {
					ids = nil
				}
				runs[i].CommentIDs = ids
				changed = true
			}
		}
		if changed {
			*slot = doc.MergeRuns(runs)
		}
	})
}

// ApplySuggestionHighlight marks a range with the suggestion's status. It is
// an upsert: re-invoking with the same id, whether to recolor on a status
// change or as part of a full re-apply, first clears the previous mark so no
// duplicate appears. Returns false when no anchor could be located.
func (e *Engine) ApplySuggestionHighlight(state *doc.State, h SuggestionHighlight) bool {
	e.RemoveSuggestionHighlight(state, h.SuggestionID)

	block := state.BlockByID(h.BlockID)
	if block == nil {
		e.logger.Warn("suggestion highlight references missing block",
			"suggestion_id", h.SuggestionID, "block_id", h.BlockID)
		return false
	}
	slots := doc.RunSlots(block)
	start, end, ok := locateRange(slots, h.Text, h.StartOffset, h.EndOffset)
	if !ok {
		e.logger.Warn("suggestion highlight anchor not found, skipping",
			"suggestion_id", h.SuggestionID, "block_id", h.BlockID)
		return false
	}
	markSlots(slots, start, end, func(r *doc.TextRun) {
		r.SuggestionID = h.SuggestionID
		r.SuggestionStatus = h.Status
	})
	return true
}

// RemoveSuggestionHighlight clears the mark everywhere it appears.
func (e *Engine) RemoveSuggestionHighlight(state *doc.State, suggestionID string) {
	forEachSlot(state, func(slot *[]doc.TextRun) {
		changed := false
		runs := *slot
		for i := range runs {
			if runs[i].SuggestionID == suggestionID {
				runs[i].SuggestionID = ""
				runs[i].SuggestionStatus = ""
				changed = true
			}
		}
		if changed {
			*slot = doc.MergeRuns(runs)
		}
	})
}

// ReplaceTextBySuggestionID splices newText over the suggestion's range.
// The marked runs, when present, define the range; otherwise the recorded
// offsets are used, and failing those the selection text is searched for.
// The spliced range is re-marked as applied so the accepted suggestion
// stays visible as an edit record.
func (e *Engine) ReplaceTextBySuggestionID(state *doc.State, sug *doc.Suggestion, newText string) bool {
	block := state.BlockByID(sug.BlockID)
	if block == nil {
		e.logger.Warn("suggestion replacement references missing block",
			"suggestion_id", sug.ID, "block_id", sug.BlockID)
		return false
	}
	slots := doc.RunSlots(block)

	start, end, ok := markedRange(slots, sug.ID)
	if !ok {
		start, end, ok = locateRange(slots, sug.SelectionText, sug.StartOffset, sug.EndOffset)
	}
	if !ok {
		e.logger.Warn("suggestion replacement anchor not found, skipping",
			"suggestion_id", sug.ID, "block_id", sug.BlockID)
		return false
	}

	spliceSlots(slots, start, end, newText)
	markSlots(slots, start, start+len([]rune(newText)), func(r *doc.TextRun) {
		r.SuggestionID = sug.ID
		r.SuggestionStatus = doc.MarkApplied
	})
	return true
}

// CommentIDsAt resolves a click at a block offset to the full set of comment
// ids covering that exact point, not just the first.
func (e *Engine) CommentIDsAt(state *doc.State, blockID string, offset int) []string {
	block := state.BlockByID(blockID)
	if block == nil {
		return nil
	}
	pos := 0
	for _, slot := range doc.RunSlots(block) {
		for _, r := range *slot {
			l := r.Len()
			if offset >= pos && offset < pos+l {
				return slices.Clone(r.CommentIDs)
			}
			pos += l
		}
	}
	return nil
}

// Reapply rebuilds every decoration from the current comment and suggestion
// lists. It strips all existing marks first, so running it against an
// already-highlighted document is a no-op in effect: same marks, no
// duplicates. Unanchored comments (replies, block-level notes) and items
// whose anchors went stale are skipped.
func (e *Engine) Reapply(state *doc.State, comments []doc.Comment, suggestions []doc.Suggestion) {
	forEachSlot(state, func(slot *[]doc.TextRun) {
		runs := *slot
		for i := range runs {
			runs[i].CommentIDs = nil
			runs[i].SuggestionID = ""
			runs[i].SuggestionStatus = ""
		}
		*slot = doc.MergeRuns(runs)
	})
	for _, c := range comments {
		if c.Resolved || !c.Anchored() {
			continue
		}
		e.ApplyCommentHighlight(state, CommentHighlight{
			CommentID:    c.ID,
			BlockID:      c.BlockID,
			SelectedText: c.SelectedText,
			StartOffset:  *c.StartOffset,
			EndOffset:    *c.EndOffset,
		})
	}
	for i := range suggestions {
		s := &suggestions[i]
		text := s.SelectionText
		if s.Status == doc.SuggestionAccepted {
			// After acceptance the document carries the improved text.
			text = s.ImprovedText
		}
		e.ApplySuggestionHighlight(state, SuggestionHighlight{
			SuggestionID: s.ID,
			BlockID:      s.BlockID,
			Text:         text,
			Status:       s.Status.MarkStatus(),
			StartOffset:  s.StartOffset,
			EndOffset:    s.EndOffset,
		})
	}
}

// locateRange validates recorded offsets against the block's current text
// and falls back to a text search when they are absent or stale.
func locateRange(slots []*[]doc.TextRun, selText string, start, end *int) (int, int, bool) {
	text := slotsText(slots)
	total := len([]rune(text))
	if start != nil && end != nil {
		s, en := *start, *end
		if s >= 0 && en <= total && s < en {
			if selText == "" || runeSlice(text, s, en) == selText {
				return s, en, true
			}
		}
	}
	if selText == "" {
		return 0, 0, false
	}
	i := strings.Index(text, selText)
	if i < 0 {
		return 0, 0, false
	}
	at := len([]rune(text[:i]))
	return at, at + len([]rune(selText)), true
}

// markedRange returns the offsets covered by runs already carrying the
// suggestion id.
func markedRange(slots []*[]doc.TextRun, suggestionID string) (int, int, bool) {
	pos := 0
	start, end := -1, -1
	for _, slot := range slots {
		for _, r := range *slot {
			l := r.Len()
			if r.SuggestionID == suggestionID {
				if start < 0 {
					start = pos
				}
				end = pos + l
			}
			pos += l
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}

// markSlots applies mark to every run segment inside [start, end), splitting
// runs at the boundaries, then re-merges each touched slot.
func markSlots(slots []*[]doc.TextRun, start, end int, mark func(*doc.TextRun)) {
	pos := 0
	for _, slot := range slots {
		l := doc.RunsLen(*slot)
		s, en := start-pos, end-pos
		pos += l
		if en <= 0 || s >= l {
			continue
		}
		if s < 0 {
			s = 0
		}
		if en > l {
			en = l
		}
		out, from, to := doc.SplitRuns(*slot, s, en)
		for i := from; i < to; i++ {
			mark(&out[i])
		}
		*slot = doc.MergeRuns(out)
	}
}

// spliceSlots performs a real text replacement over [start, end) across the
// block's slots: the replacement lands in the slot containing start, and
// covered text in later slots is deleted. An empty interval is a pure
// insertion at start.
func spliceSlots(slots []*[]doc.TextRun, start, end int, replacement string) {
	if start > end {
		start, end = end, start
	}
	if start == end {
		pos := 0
		for _, slot := range slots {
			l := doc.RunsLen(*slot)
			if start >= pos && start <= pos+l {
				*slot = doc.SpliceRuns(*slot, start-pos, start-pos, replacement)
				return
			}
			pos += l
		}
		return
	}
	pos := 0
	placed := false
	for _, slot := range slots {
		l := doc.RunsLen(*slot)
		s, en := start-pos, end-pos
		pos += l
		if en <= 0 || s >= l {
			continue
		}
		if s < 0 {
			s = 0
		}
		if en > l {
			en = l
		}
		if !placed {
			*slot = doc.SpliceRuns(*slot, s, en, replacement)
			placed = true
		} else {
			*slot = doc.SpliceRuns(*slot, s, en, "")
		}
	}
}

func slotsText(slots []*[]doc.TextRun) string {
	var b strings.Builder
	for _, slot := range slots {
		b.WriteString(doc.RunsText(*slot))
	}
	return b.String()
}

func slotsLen(slots []*[]doc.TextRun) int {
	n := 0
	for _, slot := range slots {
		n += doc.RunsLen(*slot)
	}
	return n
}

func forEachSlot(state *doc.State, fn func(*[]doc.TextRun)) {
	for _, b := range state.Blocks {
		for _, slot := range doc.RunSlots(b) {
			fn(slot)
		}
	}
}
