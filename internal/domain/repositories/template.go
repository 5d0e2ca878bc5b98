package repositories

import (
	"context"

	"redline/internal/template"
)

// TemplateRepository stores uploaded document templates. Built-in templates
// live in the embedded registry; the repository only holds user uploads.
type TemplateRepository interface {
	// Save creates or replaces a template by name
	Save(ctx context.Context, tpl *template.Template) error

	// GetByName retrieves a template
	GetByName(ctx context.Context, name string) (*template.Template, error)

	// List lists all stored templates by name
	List(ctx context.Context) ([]template.Template, error)

	// Delete deletes a template
	Delete(ctx context.Context, name string) error
}
