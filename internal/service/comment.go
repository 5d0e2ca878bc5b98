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

// commentService implements the CommentService interface
type commentService struct {
	commentRepo repositories.CommentRepository
	docRepo     repositories.DocumentRepository
	logger      *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo repositories.CommentRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.CommentService {
	return &commentService{
		commentRepo: commentRepo,
		docRepo:     docRepo,
		logger:      logger,
	}
}

// CreateComment creates a root comment on a block. Anchor offsets are
// optional; when present both must be set and ordered.
func (s *commentService) CreateComment(ctx context.Context, documentID string, req *services.CreateCommentRequest) (*doc.Comment, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Offsets travel in pairs
	if (req.StartOffset == nil) != (req.EndOffset == nil) {
		return nil, fmt.Errorf("%w: start_offset and end_offset must be provided together", domain.ErrValidation)
	}
	if req.StartOffset != nil && *req.EndOffset < *req.StartOffset {
		return nil, fmt.Errorf("%w: end_offset before start_offset", domain.ErrValidation)
	}

	// The comment must land on a real document
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	comment := &doc.Comment{
		ID:           doc.NewID("c"),
		DocumentID:   documentID,
		BlockID:      req.BlockID,
		Author:       req.Author,
		Text:         req.Content,
		SelectedText: req.SelectedText,
		StartOffset:  req.StartOffset,
		EndOffset:    req.EndOffset,
		Replies:      []doc.Comment{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		"id", comment.ID,
		"document_id", documentID,
		"block_id", comment.BlockID,
		"anchored", comment.Anchored(),
	)

	return comment, nil
}

// GetComment retrieves a comment with its replies
func (s *commentService) GetComment(ctx context.Context, documentID, id string) (*doc.Comment, error) {
	return s.commentRepo.GetByID(ctx, documentID, id)
}

// ListComments lists root comments with nested replies
func (s *commentService) ListComments(ctx context.Context, documentID, blockID string) ([]doc.Comment, error) {
	return s.commentRepo.ListByDocument(ctx, documentID, blockID)
}

// Reply adds a reply under a root comment. Replies to replies flatten onto
// the root.
func (s *commentService) Reply(ctx context.Context, documentID, commentID string, req *services.ReplyRequest) (*doc.Comment, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Author, validation.Required, validation.Length(1, config.MaxAuthorLength)),
		validation.Field(&req.Content, validation.Required, validation.Length(1, config.MaxCommentLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parent, err := s.commentRepo.GetByID(ctx, documentID, commentID)
	if err != nil {
		return nil, err
	}
	rootID := parent.ID
	if parent.ParentID != nil {
		rootID = *parent.ParentID
	}

	reply := &doc.Comment{
		ID:         doc.NewID("c"),
		DocumentID: documentID,
		BlockID:    parent.BlockID,
		ParentID:   &rootID,
		Author:     req.Author,
		Text:       req.Content,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.commentRepo.Create(ctx, reply); err != nil {
		return nil, err
	}

	s.logger.Info("comment reply created",
		"id", reply.ID,
		"document_id", documentID,
		"parent_id", rootID,
	)

	return reply, nil
}

// ToggleResolved flips a comment's resolved flag
func (s *commentService) ToggleResolved(ctx context.Context, documentID, id string) (*doc.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, documentID, id)
	if err != nil {
		return nil, err
	}
	if comment.ParentID != nil {
		return nil, fmt.Errorf("%w: replies cannot be resolved", domain.ErrValidation)
	}

	comment.Resolved = !comment.Resolved
	comment.UpdatedAt = time.Now()

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment resolved toggled",
		"id", comment.ID,
		"document_id", documentID,
		"resolved", comment.Resolved,
	)

	return comment, nil
}

// UpdateComment updates a comment's text or anchor offsets
func (s *commentService) UpdateComment(ctx context.Context, documentID, id string, req *services.UpdateCommentRequest) (*doc.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, documentID, id)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		if *req.Content == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", domain.ErrValidation)
		}
		comment.Text = *req.Content
	}
	if req.StartOffset != nil {
		comment.StartOffset = req.StartOffset
	}
	if req.EndOffset != nil {
		comment.EndOffset = req.EndOffset
	}
	if comment.StartOffset != nil && comment.EndOffset != nil && *comment.EndOffset < *comment.StartOffset {
		return nil, fmt.Errorf("%w: end_offset before start_offset", domain.ErrValidation)
	}
	comment.UpdatedAt = time.Now()

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// DeleteComment deletes a comment and its replies
func (s *commentService) DeleteComment(ctx context.Context, documentID, id string) error {
	if err := s.commentRepo.Delete(ctx, documentID, id); err != nil {
		return err
	}

	s.logger.Info("comment deleted", "id", id, "document_id", documentID)

	return nil
}

// UnresolvedCounts returns unresolved root-comment counts per block
func (s *commentService) UnresolvedCounts(ctx context.Context, documentID string) (map[string]int, error) {
	return s.commentRepo.CountUnresolvedByBlock(ctx, documentID)
}

// validateCreateRequest validates a comment creation request
func (s *commentService) validateCreateRequest(req *services.CreateCommentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.BlockID, validation.Required),
		validation.Field(&req.Author, validation.Required, validation.Length(1, config.MaxAuthorLength)),
		validation.Field(&req.Content, validation.Required, validation.Length(1, config.MaxCommentLength)),
		validation.Field(&req.SelectedText, validation.Length(0, config.MaxSelectionLength)),
	)
}
