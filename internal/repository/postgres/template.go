package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"redline/internal/domain"
	"redline/internal/domain/repositories"
	"redline/internal/template"
)

// PostgresTemplateRepository stores uploaded document templates. Sections
// persist as JSONB keyed by template name.
type PostgresTemplateRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(config *RepositoryConfig) repositories.TemplateRepository {
	return &PostgresTemplateRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Save creates or replaces a template by name
func (r *PostgresTemplateRepository) Save(ctx context.Context, tpl *template.Template) error {
	sections, err := json.Marshal(tpl.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, display_name, sections, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (name) DO UPDATE
		SET display_name = EXCLUDED.display_name, sections = EXCLUDED.sections, updated_at = EXCLUDED.updated_at
	`, r.tables.Templates)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, tpl.Name, tpl.DisplayName, sections, time.Now()); err != nil {
		return fmt.Errorf("save template: %w", err)
	}

	return nil
}

// GetByName retrieves a template
func (r *PostgresTemplateRepository) GetByName(ctx context.Context, name string) (*template.Template, error) {
	query := fmt.Sprintf(`
		SELECT name, display_name, sections
		FROM %s
		WHERE name = $1
	`, r.tables.Templates)

	var tpl template.Template
	var sections []byte
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, name).Scan(&tpl.Name, &tpl.DisplayName, &sections)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	if err := json.Unmarshal(sections, &tpl.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}

	return &tpl, nil
}

// List lists all stored templates by name
func (r *PostgresTemplateRepository) List(ctx context.Context) ([]template.Template, error) {
	query := fmt.Sprintf(`
		SELECT name, display_name, sections
		FROM %s
		ORDER BY name ASC
	`, r.tables.Templates)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []template.Template
	for rows.Next() {
		var tpl template.Template
		var sections []byte
		if err := rows.Scan(&tpl.Name, &tpl.DisplayName, &sections); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if err := json.Unmarshal(sections, &tpl.Sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, nil
}

// Delete deletes a template
func (r *PostgresTemplateRepository) Delete(ctx context.Context, name string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE name = $1
	`, r.tables.Templates)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, name)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
	}

	return nil
}
