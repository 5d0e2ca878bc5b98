package doc

import "time"

// Comment is block-level reviewer feedback, optionally anchored to a text
// selection. Offsets are rune positions within the block's concatenated text
// at creation time; they are not guaranteed valid after later edits to the
// block, which is why highlights re-resolve on every mutation.
type Comment struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	BlockID      string    `json:"block_id"`
	ParentID     *string   `json:"parent_id,omitempty"`
	Author       string    `json:"author"`
	Text         string    `json:"content"`
	SelectedText string    `json:"selection_text,omitempty"`
	StartOffset  *int      `json:"start_offset,omitempty"`
	EndOffset    *int      `json:"end_offset,omitempty"`
	Resolved     bool      `json:"resolved"`
	Replies      []Comment `json:"replies"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Anchored reports whether the comment targets a concrete text selection
// rather than the whole block.
func (c *Comment) Anchored() bool {
	return c.SelectedText != "" && c.StartOffset != nil && c.EndOffset != nil
}
