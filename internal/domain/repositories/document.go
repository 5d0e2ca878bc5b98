package repositories

import (
	"context"

	"redline/internal/domain/models"
)

// DocumentRepository defines data access operations for review documents.
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// List lists all documents, newest first
	List(ctx context.Context) ([]models.DocumentSummary, error)

	// Update replaces the document's title, markdown, blocks and template
	Update(ctx context.Context, doc *models.Document) error

	// Delete deletes a document together with its comments and suggestions
	Delete(ctx context.Context, id string) error
}
