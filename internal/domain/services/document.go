package services

import (
	"context"

	"redline/internal/domain/models"
	"redline/internal/domain/models/doc"
)

// DocumentService handles review-document business logic
type DocumentService interface {
	// CreateDocument creates a new document from markdown, deriving block
	// metadata when the caller does not supply any
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument retrieves a document with its block metadata
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments lists document summaries, newest first
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)

	// UpdateDocument saves the editor's markdown and block metadata and
	// records suggestion decisions made during the edit
	UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*models.Document, error)

	// UpdateMarkdown replaces the document text wholesale, rebuilding
	// block metadata from the markdown
	UpdateMarkdown(ctx context.Context, id string, markdown string) (*models.Document, error)

	// DeleteDocument deletes a document with its comments and suggestions
	DeleteDocument(ctx context.Context, id string) error
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title        string              `json:"title"`
	Markdown     string              `json:"markdown"`
	Blocks       []doc.BlockMetadata `json:"block_metadata,omitempty"`
	TemplateName string              `json:"template_name,omitempty"`
}

// UpdateDocumentRequest represents a document update request. Markdown and
// Blocks travel together from the editor; nil fields are left untouched.
type UpdateDocumentRequest struct {
	Title                 *string             `json:"title,omitempty"`
	Markdown              *string             `json:"markdown,omitempty"`
	Blocks                []doc.BlockMetadata `json:"block_metadata,omitempty"`
	TemplateName          *string             `json:"template_name,omitempty"`
	AcceptedSuggestionIDs []string            `json:"accepted_suggestion_ids,omitempty"`
	RejectedSuggestionIDs []string            `json:"rejected_suggestion_ids,omitempty"`
}
