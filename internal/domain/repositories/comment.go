package repositories

import (
	"context"

	"redline/internal/domain/models/doc"
)

// CommentRepository defines data access operations for review comments.
// Replies are rows whose parent_id points at the root comment; listing
// returns roots with replies nested.
type CommentRepository interface {
	// Create creates a comment or reply
	Create(ctx context.Context, comment *doc.Comment) error

	// GetByID retrieves a comment with its replies
	GetByID(ctx context.Context, documentID, id string) (*doc.Comment, error)

	// ListByDocument lists root comments with nested replies, oldest first.
	// blockID filters to one block when non-empty.
	ListByDocument(ctx context.Context, documentID, blockID string) ([]doc.Comment, error)

	// Update updates a comment's text, offsets or resolved flag
	Update(ctx context.Context, comment *doc.Comment) error

	// Delete deletes a comment and its replies
	Delete(ctx context.Context, documentID, id string) error

	// CountUnresolvedByBlock returns unresolved root-comment counts per block
	CountUnresolvedByBlock(ctx context.Context, documentID string) (map[string]int, error)
}
