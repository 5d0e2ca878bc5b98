package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"redline/internal/config"
	"redline/internal/domain"
	"redline/internal/domain/repositories"
	"redline/internal/domain/services"
	"redline/internal/template"
)

// templateService implements the TemplateService interface. Built-in
// templates come from the embedded registry; uploads live in the repository
// and shadow built-ins of the same name.
type templateService struct {
	registry *template.Registry
	tplRepo  repositories.TemplateRepository
	logger   *slog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(
	registry *template.Registry,
	tplRepo repositories.TemplateRepository,
	logger *slog.Logger,
) services.TemplateService {
	return &templateService{
		registry: registry,
		tplRepo:  tplRepo,
		logger:   logger,
	}
}

// ListTemplates lists all templates, built-in and uploaded, sorted by name
func (s *templateService) ListTemplates(ctx context.Context) ([]template.Template, error) {
	stored, err := s.tplRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]template.Template)
	for _, tpl := range s.registry.List() {
		byName[tpl.Name] = *tpl
	}
	for _, tpl := range stored {
		byName[tpl.Name] = tpl
	}

	out := make([]template.Template, 0, len(byName))
	for _, tpl := range byName {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// GetTemplate retrieves a template by name, uploads first
func (s *templateService) GetTemplate(ctx context.Context, name string) (*template.Template, error) {
	tpl, err := s.tplRepo.GetByName(ctx, name)
	if err == nil {
		return tpl, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	builtin, rerr := s.registry.Get(name)
	if rerr != nil {
		return nil, fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
	}
	return builtin, nil
}

// StoreTemplate creates or replaces an uploaded template
func (s *templateService) StoreTemplate(ctx context.Context, tpl *template.Template) error {
	if err := s.validateTemplate(tpl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if tpl.DisplayName == "" {
		tpl.DisplayName = tpl.Name
	}

	if err := s.tplRepo.Save(ctx, tpl); err != nil {
		return err
	}

	s.logger.Info("template stored",
		"name", tpl.Name,
		"sections", len(tpl.Sections),
	)

	return nil
}

// DeleteTemplate deletes an uploaded template. Built-ins are immutable.
func (s *templateService) DeleteTemplate(ctx context.Context, name string) error {
	err := s.tplRepo.Delete(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		if _, rerr := s.registry.Get(name); rerr == nil {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("template %s is built in and cannot be deleted", name),
				ResourceType: "template",
				ResourceID:   name,
			}
		}
	}
	if err != nil {
		return err
	}

	s.logger.Info("template deleted", "name", name)

	return nil
}

// validateTemplate validates an uploaded template
func (s *templateService) validateTemplate(tpl *template.Template) error {
	if err := validation.ValidateStruct(tpl,
		validation.Field(&tpl.Name, validation.Required, validation.Length(1, config.MaxTemplateNameLength)),
		validation.Field(&tpl.Sections, validation.Required),
	); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, sec := range tpl.Sections {
		if sec.Key == "" {
			return fmt.Errorf("section key is required")
		}
		if seen[sec.Key] {
			return fmt.Errorf("duplicate section key %q", sec.Key)
		}
		seen[sec.Key] = true
	}

	return nil
}
