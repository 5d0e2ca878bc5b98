package services

import "context"

// ImproveService rewrites a passage of selected text via the model
type ImproveService interface {
	// ImproveText returns an improved rendition of text. instruction, when
	// non-empty, steers the rewrite.
	ImproveText(ctx context.Context, req *ImproveRequest) (*ImproveResult, error)
}

// ImproveRequest represents an improve-text request
type ImproveRequest struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction,omitempty"`
}

// ImproveResult carries the rewrite and the model's stated reason for it
type ImproveResult struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
	Reason   string `json:"reason,omitempty"`
	Success  bool   `json:"success"`
}
