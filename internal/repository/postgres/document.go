package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"redline/internal/domain"
	"redline/internal/domain/models"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new document. Block metadata persists as JSONB.
func (r *PostgresDocumentRepository) Create(ctx context.Context, d *models.Document) error {
	blocks, err := json.Marshal(d.Blocks)
	if err != nil {
		return fmt.Errorf("encode block metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, markdown, original_markdown, block_metadata, template_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, r.tables.Documents)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		d.ID,
		d.Title,
		d.Markdown,
		d.OriginalMarkdown,
		blocks,
		d.TemplateName,
		d.CreatedAt,
		d.UpdatedAt,
	).Scan(&d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("document '%s' already exists: %w", d.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, title, markdown, original_markdown, block_metadata, template_name, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	var d models.Document
	var blocks []byte
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Title,
		&d.Markdown,
		&d.OriginalMarkdown,
		&blocks,
		&d.TemplateName,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	if len(blocks) > 0 {
		if err := json.Unmarshal(blocks, &d.Blocks); err != nil {
			return nil, fmt.Errorf("decode block metadata: %w", err)
		}
	}
	if d.Blocks == nil {
		d.Blocks = []doc.BlockMetadata{}
	}

	return &d, nil
}

// List lists all documents, newest first, without markdown or blocks
func (r *PostgresDocumentRepository) List(ctx context.Context) ([]models.DocumentSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, title, template_name, created_at, updated_at
		FROM %s
		ORDER BY updated_at DESC
	`, r.tables.Documents)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var documents []models.DocumentSummary
	for rows.Next() {
		var d models.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.TemplateName, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}

// Update replaces the document's content fields
func (r *PostgresDocumentRepository) Update(ctx context.Context, d *models.Document) error {
	blocks, err := json.Marshal(d.Blocks)
	if err != nil {
		return fmt.Errorf("encode block metadata: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, markdown = $2, original_markdown = $3, block_metadata = $4, template_name = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Documents)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		d.Title,
		d.Markdown,
		d.OriginalMarkdown,
		blocks,
		d.TemplateName,
		d.UpdatedAt,
		d.ID,
	)

	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", d.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a document; comments and suggestions cascade via FK
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
