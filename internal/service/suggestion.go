package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"redline/internal/config"
	"redline/internal/domain"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/repositories"
	"redline/internal/domain/services"
)

// suggestionService implements the SuggestionService interface
type suggestionService struct {
	sugRepo repositories.SuggestionRepository
	docRepo repositories.DocumentRepository
	logger  *slog.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(
	sugRepo repositories.SuggestionRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.SuggestionService {
	return &suggestionService{
		sugRepo: sugRepo,
		docRepo: docRepo,
		logger:  logger,
	}
}

// CreateSuggestion records a pending suggestion against a block
func (s *suggestionService) CreateSuggestion(ctx context.Context, documentID string, req *services.CreateSuggestionRequest) (*doc.Suggestion, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if (req.StartOffset == nil) != (req.EndOffset == nil) {
		return nil, fmt.Errorf("%w: start_offset and end_offset must be provided together", domain.ErrValidation)
	}
	if req.StartOffset != nil && *req.EndOffset < *req.StartOffset {
		return nil, fmt.Errorf("%w: end_offset before start_offset", domain.ErrValidation)
	}

	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	sug := &doc.Suggestion{
		ID:            doc.NewID("ai"),
		DocumentID:    documentID,
		BlockID:       req.BlockID,
		SelectionText: req.SelectedText,
		ImprovedText:  req.ImprovedText,
		Reason:        req.Reason,
		Status:        doc.SuggestionPending,
		StartOffset:   req.StartOffset,
		EndOffset:     req.EndOffset,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.sugRepo.Create(ctx, sug); err != nil {
		return nil, err
	}

	s.logger.Info("suggestion created",
		"id", sug.ID,
		"document_id", documentID,
		"block_id", sug.BlockID,
	)

	return sug, nil
}

// GetSuggestion retrieves a suggestion
func (s *suggestionService) GetSuggestion(ctx context.Context, documentID, id string) (*doc.Suggestion, error) {
	return s.sugRepo.GetByID(ctx, documentID, id)
}

// ListSuggestions lists a document's suggestions, oldest first
func (s *suggestionService) ListSuggestions(ctx context.Context, documentID string) ([]doc.Suggestion, error) {
	return s.sugRepo.ListByDocument(ctx, documentID)
}

// UpdateStatus moves a suggestion to accepted or rejected. The text
// replacement itself happens client-side in the editor; the server only
// records the decision.
func (s *suggestionService) UpdateStatus(ctx context.Context, documentID, id string, status doc.SuggestionStatus) (*doc.Suggestion, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	if err := s.sugRepo.UpdateStatus(ctx, documentID, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("suggestion status updated",
		"id", id,
		"document_id", documentID,
		"status", status,
	)

	return s.sugRepo.GetByID(ctx, documentID, id)
}

// DeleteSuggestion deletes a suggestion
func (s *suggestionService) DeleteSuggestion(ctx context.Context, documentID, id string) error {
	if err := s.sugRepo.Delete(ctx, documentID, id); err != nil {
		return err
	}

	s.logger.Info("suggestion deleted", "id", id, "document_id", documentID)

	return nil
}

// validateCreateRequest validates a suggestion creation request
func (s *suggestionService) validateCreateRequest(req *services.CreateSuggestionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.BlockID, validation.Required),
		validation.Field(&req.SelectedText, validation.Required, validation.Length(1, config.MaxSelectionLength)),
		validation.Field(&req.ImprovedText, validation.Required, validation.Length(1, config.MaxSelectionLength)),
	)
}
