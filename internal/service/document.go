package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"redline/internal/config"
	"redline/internal/convert"
	"redline/internal/domain"
	"redline/internal/domain/models"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/repositories"
	"redline/internal/domain/services"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo   repositories.DocumentRepository
	sugRepo   repositories.SuggestionRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	sugRepo repositories.SuggestionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:   docRepo,
		sugRepo:   sugRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// CreateDocument creates a new document from markdown. When the caller does
// not supply block metadata, the markdown itself is parsed into blocks so the
// editor always has something to render.
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	blocks := req.Blocks
	if len(blocks) == 0 {
		state, err := convert.MarkdownToState("", req.Title, req.Markdown)
		if err != nil {
			return nil, fmt.Errorf("%w: parse markdown: %v", domain.ErrValidation, err)
		}
		blocks = convert.StateToMetadata(state)
	}

	d := &models.Document{
		ID:           doc.NewID("doc"),
		Title:        req.Title,
		Markdown:     req.Markdown,
		Blocks:       blocks,
		TemplateName: req.TemplateName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.docRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", d.ID,
		"title", d.Title,
		"template", d.TemplateName,
		"blocks", len(d.Blocks),
	)

	return d, nil
}

// GetDocument retrieves a document with its block metadata
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// ListDocuments lists document summaries, newest first
func (s *documentService) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	return s.docRepo.List(ctx)
}

// UpdateDocument saves the editor's markdown and block metadata. Suggestion
// decisions made during the edit commit in the same transaction, so a crash
// can never persist the replaced text without its accepted mark.
func (s *documentService) UpdateDocument(ctx context.Context, id string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	d, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
		}
		d.Title = *req.Title
	}
	if req.Markdown != nil {
		// Keep the pre-review text around once, before the first edit
		// lands on top of it.
		if d.OriginalMarkdown == "" && d.Markdown != *req.Markdown {
			d.OriginalMarkdown = d.Markdown
		}
		d.Markdown = *req.Markdown
	}
	if req.Blocks != nil {
		d.Blocks = req.Blocks
	}
	if req.TemplateName != nil {
		d.TemplateName = *req.TemplateName
	}
	d.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.docRepo.Update(ctx, d); err != nil {
			return err
		}
		for _, sugID := range req.AcceptedSuggestionIDs {
			if err := s.sugRepo.UpdateStatus(ctx, id, sugID, doc.SuggestionAccepted); err != nil {
				return err
			}
		}
		for _, sugID := range req.RejectedSuggestionIDs {
			if err := s.sugRepo.UpdateStatus(ctx, id, sugID, doc.SuggestionRejected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", d.ID,
		"title", d.Title,
		"accepted", len(req.AcceptedSuggestionIDs),
		"rejected", len(req.RejectedSuggestionIDs),
	)

	return d, nil
}

// UpdateMarkdown replaces the document text wholesale and rebuilds block
// metadata from the new markdown. Block ids do not survive this path.
func (s *documentService) UpdateMarkdown(ctx context.Context, id string, markdown string) (*models.Document, error) {
	if markdown == "" {
		return nil, fmt.Errorf("%w: markdown cannot be empty", domain.ErrValidation)
	}

	d, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	state, err := convert.MarkdownToState(d.ID, d.Title, markdown)
	if err != nil {
		return nil, fmt.Errorf("%w: parse markdown: %v", domain.ErrValidation, err)
	}

	if d.OriginalMarkdown == "" && d.Markdown != markdown {
		d.OriginalMarkdown = d.Markdown
	}
	d.Markdown = markdown
	d.Blocks = convert.StateToMetadata(state)
	d.UpdatedAt = time.Now()

	if err := s.docRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("document markdown replaced",
		"id", d.ID,
		"blocks", len(d.Blocks),
	)

	return d, nil
}

// DeleteDocument deletes a document with its comments and suggestions
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", id)

	return nil
}

// validateCreateRequest validates a document creation request
func (s *documentService) validateCreateRequest(req *services.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxDocumentTitleLength),
		),
		validation.Field(&req.Markdown, validation.Required),
		validation.Field(&req.TemplateName,
			validation.Length(0, config.MaxTemplateNameLength),
		),
	)
}
