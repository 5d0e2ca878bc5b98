package services

import (
	"context"

	"redline/internal/domain/models/doc"
)

// SuggestionService handles AI-suggestion business logic
type SuggestionService interface {
	// CreateSuggestion records a pending suggestion against a block
	CreateSuggestion(ctx context.Context, documentID string, req *CreateSuggestionRequest) (*doc.Suggestion, error)

	// GetSuggestion retrieves a suggestion
	GetSuggestion(ctx context.Context, documentID, id string) (*doc.Suggestion, error)

	// ListSuggestions lists a document's suggestions, oldest first
	ListSuggestions(ctx context.Context, documentID string) ([]doc.Suggestion, error)

	// UpdateStatus moves a suggestion to accepted or rejected
	UpdateStatus(ctx context.Context, documentID, id string, status doc.SuggestionStatus) (*doc.Suggestion, error)

	// DeleteSuggestion deletes a suggestion
	DeleteSuggestion(ctx context.Context, documentID, id string) error
}

// CreateSuggestionRequest represents a suggestion creation request
type CreateSuggestionRequest struct {
	BlockID      string `json:"block_id"`
	SelectedText string `json:"selection_text"`
	ImprovedText string `json:"improved_text"`
	Reason       string `json:"reason,omitempty"`
	StartOffset  *int   `json:"start_offset,omitempty"`
	EndOffset    *int   `json:"end_offset,omitempty"`
}
