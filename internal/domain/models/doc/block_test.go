package doc

import (
	"encoding/json"
	"testing"
)

func TestBlockJSONRoundTripByTypeTag(t *testing.T) {
	blocks := []Block{
		&Heading{BlockBase: BlockBase{ID: "b1", SectionKey: "scope"}, Level: 2, Text: []TextRun{{Text: "Scope"}}},
		&Paragraph{BlockBase: BlockBase{ID: "b2"}, Text: []TextRun{{Text: "bold", Bold: true}}},
		&List{BlockBase: BlockBase{ID: "b3"}, Style: ListNumber, Items: []ListItem{
			{ID: "b3_item_0", Text: []TextRun{{Text: "one"}}},
		}},
		&Table{BlockBase: BlockBase{ID: "b4"}, Columns: []string{"a"}, Rows: [][]string{{"1"}}},
		&Divider{BlockBase: BlockBase{ID: "b5"}},
		&Note{BlockBase: BlockBase{ID: "b6"}, Text: []TextRun{{Text: "n"}}},
		&Image{BlockBase: BlockBase{ID: "b7"}, Src: "x.png", Description: "x"},
		&Preformatted{BlockBase: BlockBase{ID: "b8"}, Text: "select 1;", Language: "sql"},
	}
	for _, b := range blocks {
		raw, err := MarshalBlock(b)
		if err != nil {
			t.Fatalf("%T: %v", b, err)
		}
		got, err := UnmarshalBlock(raw)
		if err != nil {
			t.Fatalf("%T: %v", b, err)
		}
		if got.Type() != b.Type() || got.BlockID() != b.BlockID() {
			t.Errorf("%T did not round-trip: %+v", b, got)
		}
		if BlockText(got) != BlockText(b) {
			t.Errorf("%T text changed: %q -> %q", b, BlockText(b), BlockText(got))
		}
	}
}

func TestUnmarshalBlockRejectsUnknownType(t *testing.T) {
	if _, err := UnmarshalBlock([]byte(`{"id":"b1","type":"hologram"}`)); err == nil {
		t.Error("expected error for unknown block type")
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	state := &State{
		ID:    "d1",
		Title: "Policy",
		Blocks: []Block{
			&Heading{BlockBase: BlockBase{ID: "b1"}, Level: 1, Text: []TextRun{{Text: "Purpose"}}},
			&Paragraph{BlockBase: BlockBase{ID: "b2"}, Text: []TextRun{
				{Text: "marked", CommentIDs: []string{"c1"}, SuggestionID: "s1", SuggestionStatus: MarkSuggested},
			}},
		},
		Meta: map[string]string{"source": "upload.pdf"},
	}
	raw, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}
	var got State
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "d1" || got.Title != "Policy" || len(got.Blocks) != 2 {
		t.Fatalf("unexpected state %+v", got)
	}
	p, ok := got.Blocks[1].(*Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", got.Blocks[1])
	}
	r := p.Text[0]
	if r.SuggestionID != "s1" || r.SuggestionStatus != MarkSuggested || len(r.CommentIDs) != 1 {
		t.Errorf("decoration lost in round-trip: %+v", r)
	}
	if got.Meta["source"] != "upload.pdf" {
		t.Errorf("meta lost: %+v", got.Meta)
	}
}

func TestRunSlotsWalksListDepthFirst(t *testing.T) {
	list := &List{BlockBase: BlockBase{ID: "b1"}, Items: []ListItem{
		{ID: "i0", Text: []TextRun{{Text: "a"}}, Children: []ListItem{
			{ID: "i0_0", Text: []TextRun{{Text: "b"}}},
		}},
		{ID: "i1", Text: []TextRun{{Text: "c"}}},
	}}
	if got := BlockText(list); got != "abc" {
		t.Errorf("expected depth-first walk abc, got %q", got)
	}
	slots := RunSlots(list)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	// Slots are addressable: writes land in the tree.
	(*slots[1])[0].Text = "B"
	if got := BlockText(list); got != "aBc" {
		t.Errorf("slot write did not land, got %q", got)
	}
}

func TestBlockContentJSONUnion(t *testing.T) {
	var m BlockMetadata
	if err := json.Unmarshal([]byte(`{"id":"b1","type":"paragraph","content":"plain"}`), &m); err != nil {
		t.Fatal(err)
	}
	if m.Content.Structured || m.Content.Raw != "plain" {
		t.Errorf("string content mishandled: %+v", m.Content)
	}

	if err := json.Unmarshal([]byte(`{"id":"b1","type":"paragraph","content":[{"text":"a","bold":true}]}`), &m); err != nil {
		t.Fatal(err)
	}
	if !m.Content.Structured || len(m.Content.Segments) != 1 || !m.Content.Segments[0].Bold {
		t.Errorf("segment content mishandled: %+v", m.Content)
	}

	raw, err := json.Marshal(BlockMetadata{ID: "b1", Type: "paragraph", Content: StringContent("x")})
	if err != nil {
		t.Fatal(err)
	}
	var back BlockMetadata
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Content.Raw != "x" {
		t.Errorf("content did not round-trip: %+v", back.Content)
	}
}
