package repositories

import (
	"context"

	"redline/internal/domain/models/doc"
)

// SuggestionRepository defines data access operations for AI suggestions.
type SuggestionRepository interface {
	// Create creates a suggestion
	Create(ctx context.Context, sug *doc.Suggestion) error

	// GetByID retrieves a suggestion
	GetByID(ctx context.Context, documentID, id string) (*doc.Suggestion, error)

	// ListByDocument lists a document's suggestions, oldest first
	ListByDocument(ctx context.Context, documentID string) ([]doc.Suggestion, error)

	// UpdateStatus moves a suggestion through its lifecycle
	UpdateStatus(ctx context.Context, documentID, id string, status doc.SuggestionStatus) error

	// Delete deletes a suggestion
	Delete(ctx context.Context, documentID, id string) error
}
