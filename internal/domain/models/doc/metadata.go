package doc

import (
	"encoding/json"
	"fmt"
)

// InlineSegment is the structured inline-formatting form of persisted block
// content, used when content arrives already split into formatted spans
// instead of an HTML-bearing string.
type InlineSegment struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Code      bool   `json:"code,omitempty"`
}

// BlockContent is the persisted content union: either a raw string (possibly
// carrying inline HTML tags) or a structured segment list. Exactly one side
// is populated; Structured reports which.
type BlockContent struct {
	Raw        string
	Segments   []InlineSegment
	Structured bool
}

func StringContent(s string) BlockContent {
	return BlockContent{Raw: s}
}

func SegmentContent(segs []InlineSegment) BlockContent {
	return BlockContent{Segments: segs, Structured: true}
}

func (c BlockContent) MarshalJSON() ([]byte, error) {
	if c.Structured {
		return json.Marshal(c.Segments)
	}
	return json.Marshal(c.Raw)
}

func (c *BlockContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = BlockContent{Raw: s}
		return nil
	}
	var segs []InlineSegment
	if err := json.Unmarshal(data, &segs); err != nil {
		return fmt.Errorf("content is neither string nor segment list: %w", err)
	}
	*c = BlockContent{Segments: segs, Structured: true}
	return nil
}

// MetadataItem is a persisted list item. Items nest through Children.
type MetadataItem struct {
	Text     string         `json:"text"`
	Children []MetadataItem `json:"children,omitempty"`
}

// BlockMetadata is the flat persisted form of a block. Its ID is the same
// stable key as Block.BlockID, used to correlate comments and suggestions to
// blocks across conversions.
type BlockMetadata struct {
	ID          string         `json:"id"`
	Page        int            `json:"page"`
	BlockNum    int            `json:"block_num"`
	StartLine   int            `json:"start_line"`
	EndLine     int            `json:"end_line"`
	Type        string         `json:"type"`
	Level       int            `json:"level,omitempty"`
	SectionKey  string         `json:"section_key,omitempty"`
	Content     BlockContent   `json:"content"`
	ListType    string         `json:"list_type,omitempty"`
	Items       []MetadataItem `json:"items,omitempty"`
	Columns     []string       `json:"columns,omitempty"`
	Rows        [][]string     `json:"rows,omitempty"`
	Language    string         `json:"language,omitempty"`
	Src         string         `json:"src,omitempty"`
	Description string         `json:"description,omitempty"`
}
