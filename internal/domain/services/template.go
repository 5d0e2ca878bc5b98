package services

import (
	"context"

	"redline/internal/template"
)

// TemplateService merges built-in templates with stored uploads. Uploads
// shadow built-ins of the same name.
type TemplateService interface {
	// ListTemplates lists all templates, built-in and uploaded
	ListTemplates(ctx context.Context) ([]template.Template, error)

	// GetTemplate retrieves a template by name
	GetTemplate(ctx context.Context, name string) (*template.Template, error)

	// StoreTemplate creates or replaces an uploaded template
	StoreTemplate(ctx context.Context, tpl *template.Template) error

	// DeleteTemplate deletes an uploaded template. Built-ins cannot be
	// deleted.
	DeleteTemplate(ctx context.Context, name string) error
}
