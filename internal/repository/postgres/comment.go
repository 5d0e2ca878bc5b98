package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"redline/internal/domain"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/repositories"
)

// PostgresCommentRepository implements the CommentRepository interface.
// Replies are rows with parent_id set; listing nests them under their root.
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(config *RepositoryConfig) repositories.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const commentColumns = `id, document_id, block_id, parent_id, author, content, selection_text, start_offset, end_offset, resolved, created_at, updated_at`

// Create creates a comment or reply
func (r *PostgresCommentRepository) Create(ctx context.Context, c *doc.Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, r.tables.Comments, commentColumns)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		c.ID,
		c.DocumentID,
		c.BlockID,
		c.ParentID,
		c.Author,
		c.Text,
		c.SelectedText,
		c.StartOffset,
		c.EndOffset,
		c.Resolved,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("comment '%s' already exists: %w", c.ID, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", c.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment with its replies
func (r *PostgresCommentRepository) GetByID(ctx context.Context, documentID, id string) (*doc.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1 AND id = $2
	`, commentColumns, r.tables.Comments)

	c, err := scanComment(GetExecutor(ctx, r.pool).QueryRow(ctx, query, documentID, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	replies, err := r.listReplies(ctx, documentID, id)
	if err != nil {
		return nil, err
	}
	c.Replies = replies

	return c, nil
}

// ListByDocument lists root comments with nested replies, oldest first
func (r *PostgresCommentRepository) ListByDocument(ctx context.Context, documentID, blockID string) ([]doc.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at ASC
	`, commentColumns, r.tables.Comments)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var all []doc.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		all = append(all, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return nestReplies(all, blockID), nil
}

// nestReplies nests replies under their roots, preserving creation order.
// Roots without replies keep the empty slice scanComment gave them, so the
// wire shape is always an array.
func nestReplies(all []doc.Comment, blockID string) []doc.Comment {
	byParent := make(map[string][]doc.Comment)
	for _, c := range all {
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}
	var roots []doc.Comment
	for _, c := range all {
		if c.ParentID != nil {
			continue
		}
		if blockID != "" && c.BlockID != blockID {
			continue
		}
		if replies := byParent[c.ID]; len(replies) > 0 {
			c.Replies = replies
		}
		roots = append(roots, c)
	}
	return roots
}

// Update updates a comment's text, offsets or resolved flag
func (r *PostgresCommentRepository) Update(ctx context.Context, c *doc.Comment) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, selection_text = $2, start_offset = $3, end_offset = $4, resolved = $5, updated_at = $6
		WHERE document_id = $7 AND id = $8
	`, r.tables.Comments)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		c.Text,
		c.SelectedText,
		c.StartOffset,
		c.EndOffset,
		c.Resolved,
		c.UpdatedAt,
		c.DocumentID,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", c.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a comment and its replies
func (r *PostgresCommentRepository) Delete(ctx context.Context, documentID, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1 AND (id = $2 OR parent_id = $2)
	`, r.tables.Comments)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, documentID, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// CountUnresolvedByBlock returns unresolved root-comment counts per block
func (r *PostgresCommentRepository) CountUnresolvedByBlock(ctx context.Context, documentID string) (map[string]int, error) {
	query := fmt.Sprintf(`
		SELECT block_id, COUNT(*)
		FROM %s
		WHERE document_id = $1 AND parent_id IS NULL AND NOT resolved
		GROUP BY block_id
	`, r.tables.Comments)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var blockID string
		var n int
		if err := rows.Scan(&blockID, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[blockID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}

	return counts, nil
}

func (r *PostgresCommentRepository) listReplies(ctx context.Context, documentID, parentID string) ([]doc.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1 AND parent_id = $2
		ORDER BY created_at ASC
	`, commentColumns, r.tables.Comments)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, documentID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	replies := make([]doc.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		replies = append(replies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replies: %w", err)
	}

	return replies, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*doc.Comment, error) {
	var c doc.Comment
	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.BlockID,
		&c.ParentID,
		&c.Author,
		&c.Text,
		&c.SelectedText,
		&c.StartOffset,
		&c.EndOffset,
		&c.Resolved,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Never leave Replies nil: the replies field serializes as [] for every
	// comment, nested replies included.
	c.Replies = []doc.Comment{}
	return &c, nil
}
