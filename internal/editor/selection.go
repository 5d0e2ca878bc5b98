package editor

import (
	"strings"

	"redline/internal/domain/models/doc"
)

// Selection is a resolved text selection: offsets are 0-based rune counts
// into the concatenated text of the block's runs, in document order, with
// StartOffset <= EndOffset always.
type Selection struct {
	BlockID      string `json:"block_id"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
	SelectedText string `json:"selected_text"`
}

// RawSelection describes a browser selection before resolution: anchor and
// focus as (run index, offset within run) positions inside one block, plus
// the selected text and the live cursor offset for the search fallback.
type RawSelection struct {
	BlockID      string
	AnchorRun    int
	AnchorOffset int
	FocusRun     int
	FocusOffset  int
	SelectedText string
	CursorOffset int
}

// ResolveSelection computes block-relative offsets for a raw selection.
// It is a pure function over the block's current run snapshot. When the
// anchor or focus position no longer exists in the snapshot (the tree
// mutated under the selection), it falls back to searching for the selected
// text, preferring the occurrence closest to the live cursor. Returns nil
// when the block cannot be found.
func ResolveSelection(state *doc.State, raw RawSelection) *Selection {
	block := state.BlockByID(raw.BlockID)
	if block == nil {
		return nil
	}
	runs := flattenSlots(doc.RunSlots(block))
	text := doc.RunsText(runs)

	start, okA := runPosition(runs, raw.AnchorRun, raw.AnchorOffset)
	end, okF := runPosition(runs, raw.FocusRun, raw.FocusOffset)
	if okA && okF {
		if start > end {
			start, end = end, start
		}
		return &Selection{
			BlockID:      raw.BlockID,
			StartOffset:  start,
			EndOffset:    end,
			SelectedText: runeSlice(text, start, end),
		}
	}

	if raw.SelectedText == "" {
		return nil
	}
	idx := nearestOccurrence(text, raw.SelectedText, raw.CursorOffset)
	if idx < 0 {
		return nil
	}
	length := len([]rune(raw.SelectedText))
	return &Selection{
		BlockID:      raw.BlockID,
		StartOffset:  idx,
		EndOffset:    idx + length,
		SelectedText: raw.SelectedText,
	}
}

// runPosition converts a (run index, offset in run) pair to a block-relative
// offset. Reports false when the position does not exist in the snapshot.
func runPosition(runs []doc.TextRun, run, offset int) (int, bool) {
	if run < 0 || run >= len(runs) || offset < 0 {
		return 0, false
	}
	if offset > runs[run].Len() {
		return 0, false
	}
	pos := 0
	for i := 0; i < run; i++ {
		pos += runs[i].Len()
	}
	return pos + offset, true
}

// nearestOccurrence returns the rune offset of the occurrence of needle in
// text whose start is closest to cursor, or -1 when absent.
func nearestOccurrence(text, needle string, cursor int) int {
	best := -1
	bestDist := 0
	runeOffset := 0
	rest := text
	for {
		i := strings.Index(rest, needle)
		if i < 0 {
			break
		}
		at := runeOffset + len([]rune(rest[:i]))
		dist := at - cursor
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best = at
			bestDist = dist
		}
		adv := i + len(needle)
		runeOffset += len([]rune(rest[:adv]))
		rest = rest[adv:]
	}
	return best
}

func flattenSlots(slots []*[]doc.TextRun) []doc.TextRun {
	var runs []doc.TextRun
	for _, s := range slots {
		runs = append(runs, *s...)
	}
	return runs
}

func runeSlice(s string, start, end int) string {
	rs := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(rs) {
		end = len(rs)
	}
	if start >= end {
		return ""
	}
	return string(rs[start:end])
}
