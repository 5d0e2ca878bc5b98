package doc

import (
	"reflect"
	"testing"
)

func TestMergeRunsCombinesAdjacentSameFormat(t *testing.T) {
	runs := []TextRun{
		{Text: "Hel", Bold: true},
		{Text: "lo ", Bold: true},
		{Text: "world"},
	}
	merged := MergeRuns(runs)
	if len(merged) != 2 {
		t.Fatalf("expected 2 runs, got %d: %+v", len(merged), merged)
	}
	if merged[0].Text != "Hello " || !merged[0].Bold {
		t.Errorf("unexpected first run: %+v", merged[0])
	}
	if merged[1].Text != "world" || merged[1].Bold {
		t.Errorf("unexpected second run: %+v", merged[1])
	}
}

func TestMergeRunsIsIdempotent(t *testing.T) {
	runs := []TextRun{
		{Text: "a", Bold: true},
		{Text: "b", Bold: true},
		{Text: "c", Italic: true},
		{Text: ""},
		{Text: "d", Italic: true, CommentIDs: []string{"c1"}},
	}
	once := MergeRuns(runs)
	twice := MergeRuns(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeRunsKeepsCommentSetsApart(t *testing.T) {
	runs := []TextRun{
		{Text: "Hello ", CommentIDs: []string{"c1"}},
		{Text: "world", CommentIDs: []string{"c1", "c2"}},
	}
	merged := MergeRuns(runs)
	if len(merged) != 2 {
		t.Fatalf("runs with different comment sets must not merge, got %+v", merged)
	}

	same := []TextRun{
		{Text: "Hello ", CommentIDs: []string{"c1", "c2"}},
		{Text: "world", CommentIDs: []string{"c2", "c1"}},
	}
	merged = MergeRuns(same)
	if len(merged) != 1 {
		t.Fatalf("identical comment sets should merge regardless of order, got %+v", merged)
	}
}

func TestMergeRunsEmptyInputKeepsOneEmptyRun(t *testing.T) {
	for _, runs := range [][]TextRun{nil, {}, {{Text: ""}}, {{Text: ""}, {Text: ""}}} {
		merged := MergeRuns(runs)
		if len(merged) != 1 || merged[0].Text != "" {
			t.Errorf("expected single empty run for %+v, got %+v", runs, merged)
		}
	}
}

func TestSplitRunsCutsAtBoundaries(t *testing.T) {
	runs := []TextRun{{Text: "Hello world"}}
	out, from, to := SplitRuns(runs, 6, 11)
	if len(out) != 2 {
		t.Fatalf("expected 2 segments, got %+v", out)
	}
	if out[0].Text != "Hello " || out[1].Text != "world" {
		t.Errorf("unexpected segments: %+v", out)
	}
	if from != 1 || to != 2 {
		t.Errorf("expected covering range [1,2), got [%d,%d)", from, to)
	}
}

func TestSplitRunsInsertionPoint(t *testing.T) {
	runs := []TextRun{{Text: "Hello world"}}
	_, from, to := SplitRuns(runs, 5, 5)
	if from != to {
		t.Errorf("empty interval should cover nothing, got [%d,%d)", from, to)
	}
	if from != 1 {
		t.Errorf("insertion point should sit after the first segment, got %d", from)
	}
}

func TestSpliceRunsReplacesRange(t *testing.T) {
	runs := []TextRun{{Text: "Hello "}, {Text: "world", Bold: true}}
	out := SpliceRuns(runs, 6, 11, "there")
	if RunsText(out) != "Hello there" {
		t.Errorf("unexpected text %q", RunsText(out))
	}
	// Replacement inherits the formatting of the run at the splice start.
	last := out[len(out)-1]
	if !last.Bold {
		t.Errorf("replacement should inherit bold, got %+v", out)
	}
}

func TestSpliceRunsHandlesUnicode(t *testing.T) {
	runs := []TextRun{{Text: "héllo wörld"}}
	out := SpliceRuns(runs, 6, 11, "см")
	if RunsText(out) != "héllo см" {
		t.Errorf("unexpected text %q", RunsText(out))
	}
}

func TestSpliceRunsDeleteAllLeavesEmptyRun(t *testing.T) {
	runs := []TextRun{{Text: "abc"}}
	out := SpliceRuns(runs, 0, 3, "")
	if len(out) != 1 || out[0].Text != "" {
		t.Errorf("expected single empty run, got %+v", out)
	}
}
