package services

import (
	"context"

	"redline/internal/domain/models/doc"
)

// CommentService handles review-comment business logic
type CommentService interface {
	// CreateComment creates a root comment on a block
	CreateComment(ctx context.Context, documentID string, req *CreateCommentRequest) (*doc.Comment, error)

	// GetComment retrieves a comment with its replies
	GetComment(ctx context.Context, documentID, id string) (*doc.Comment, error)

	// ListComments lists root comments with nested replies. blockID filters
	// to one block when non-empty.
	ListComments(ctx context.Context, documentID, blockID string) ([]doc.Comment, error)

	// Reply adds a reply under a root comment
	Reply(ctx context.Context, documentID, commentID string, req *ReplyRequest) (*doc.Comment, error)

	// ToggleResolved flips a comment's resolved flag and returns the comment
	ToggleResolved(ctx context.Context, documentID, id string) (*doc.Comment, error)

	// UpdateComment updates a comment's text or anchor offsets
	UpdateComment(ctx context.Context, documentID, id string, req *UpdateCommentRequest) (*doc.Comment, error)

	// DeleteComment deletes a comment and its replies
	DeleteComment(ctx context.Context, documentID, id string) error

	// UnresolvedCounts returns unresolved root-comment counts per block
	UnresolvedCounts(ctx context.Context, documentID string) (map[string]int, error)
}

// CreateCommentRequest represents a comment creation request
type CreateCommentRequest struct {
	BlockID      string `json:"block_id"`
	Author       string `json:"author"`
	Content      string `json:"content"`
	SelectedText string `json:"selection_text,omitempty"`
	StartOffset  *int   `json:"start_offset,omitempty"`
	EndOffset    *int   `json:"end_offset,omitempty"`
}

// ReplyRequest represents a reply to an existing comment
type ReplyRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// UpdateCommentRequest represents a comment update; nil fields are untouched
type UpdateCommentRequest struct {
	Content     *string `json:"content,omitempty"`
	StartOffset *int    `json:"start_offset,omitempty"`
	EndOffset   *int    `json:"end_offset,omitempty"`
}
