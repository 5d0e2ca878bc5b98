package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"redline/internal/domain"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/repositories"
)

// PostgresSuggestionRepository implements the SuggestionRepository interface
type PostgresSuggestionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSuggestionRepository creates a new suggestion repository
func NewSuggestionRepository(config *RepositoryConfig) repositories.SuggestionRepository {
	return &PostgresSuggestionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const suggestionColumns = `id, document_id, block_id, selection_text, improved_text, reason, status, start_offset, end_offset, created_at, updated_at`

// Create creates a suggestion
func (r *PostgresSuggestionRepository) Create(ctx context.Context, s *doc.Suggestion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, r.tables.Suggestions, suggestionColumns)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		s.ID,
		s.DocumentID,
		s.BlockID,
		s.SelectionText,
		s.ImprovedText,
		s.Reason,
		s.Status,
		s.StartOffset,
		s.EndOffset,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("suggestion '%s' already exists: %w", s.ID, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", s.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create suggestion: %w", err)
	}

	return nil
}

// GetByID retrieves a suggestion
func (r *PostgresSuggestionRepository) GetByID(ctx context.Context, documentID, id string) (*doc.Suggestion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1 AND id = $2
	`, suggestionColumns, r.tables.Suggestions)

	var s doc.Suggestion
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, documentID, id).Scan(
		&s.ID,
		&s.DocumentID,
		&s.BlockID,
		&s.SelectionText,
		&s.ImprovedText,
		&s.Reason,
		&s.Status,
		&s.StartOffset,
		&s.EndOffset,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get suggestion: %w", err)
	}

	return &s, nil
}

// ListByDocument lists a document's suggestions, oldest first
func (r *PostgresSuggestionRepository) ListByDocument(ctx context.Context, documentID string) ([]doc.Suggestion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at ASC
	`, suggestionColumns, r.tables.Suggestions)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []doc.Suggestion
	for rows.Next() {
		var s doc.Suggestion
		err := rows.Scan(
			&s.ID,
			&s.DocumentID,
			&s.BlockID,
			&s.SelectionText,
			&s.ImprovedText,
			&s.Reason,
			&s.Status,
			&s.StartOffset,
			&s.EndOffset,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	return suggestions, nil
}

// UpdateStatus moves a suggestion through its lifecycle
func (r *PostgresSuggestionRepository) UpdateStatus(ctx context.Context, documentID, id string, status doc.SuggestionStatus) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = now()
		WHERE document_id = $2 AND id = $3
	`, r.tables.Suggestions)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, status, documentID, id)
	if err != nil {
		return fmt.Errorf("update suggestion status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a suggestion
func (r *PostgresSuggestionRepository) Delete(ctx context.Context, documentID, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1 AND id = $2
	`, r.tables.Suggestions)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, documentID, id)
	if err != nil {
		return fmt.Errorf("delete suggestion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
