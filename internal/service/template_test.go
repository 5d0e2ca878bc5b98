package service

import (
	"context"
	"errors"
	"testing"

	"redline/internal/domain"
	"redline/internal/template"
)

func templateFixture(t *testing.T) (*fakeTemplateRepo, *template.Registry) {
	t.Helper()
	registry, err := template.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return newFakeTemplateRepo(), registry
}

func TestListTemplatesMergesUploadsOverBuiltins(t *testing.T) {
	repo, registry := templateFixture(t)
	svc := NewTemplateService(registry, repo, testLogger())

	repo.templates["policy_review"] = template.Template{
		Name:        "policy_review",
		DisplayName: "Custom Policy Review",
		Sections:    []template.Section{{Key: "purpose", Required: true}},
	}
	repo.templates["custom_audit"] = template.Template{
		Name:     "custom_audit",
		Sections: []template.Section{{Key: "findings", Required: true}},
	}

	all, err := svc.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}

	byName := make(map[string]template.Template)
	for _, tpl := range all {
		byName[tpl.Name] = tpl
	}
	if _, ok := byName["custom_audit"]; !ok {
		t.Error("uploaded template missing from list")
	}
	if _, ok := byName["risk_assessment"]; !ok {
		t.Error("built-in template missing from list")
	}
	if byName["policy_review"].DisplayName != "Custom Policy Review" {
		t.Errorf("upload should shadow built-in, got %q", byName["policy_review"].DisplayName)
	}
}

func TestGetTemplateFallsBackToBuiltin(t *testing.T) {
	repo, registry := templateFixture(t)
	svc := NewTemplateService(registry, repo, testLogger())

	tpl, err := svc.GetTemplate(context.Background(), "policy_review")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if len(tpl.Sections) == 0 {
		t.Error("built-in template has no sections")
	}

	_, err = svc.GetTemplate(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreTemplateValidation(t *testing.T) {
	repo, registry := templateFixture(t)
	svc := NewTemplateService(registry, repo, testLogger())

	err := svc.StoreTemplate(context.Background(), &template.Template{Name: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("no sections: err = %v, want ErrValidation", err)
	}

	err = svc.StoreTemplate(context.Background(), &template.Template{
		Name: "dup",
		Sections: []template.Section{
			{Key: "a"},
			{Key: "a"},
		},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("duplicate keys: err = %v, want ErrValidation", err)
	}

	err = svc.StoreTemplate(context.Background(), &template.Template{
		Name:     "ok",
		Sections: []template.Section{{Key: "a"}},
	})
	if err != nil {
		t.Fatalf("StoreTemplate: %v", err)
	}
	if repo.templates["ok"].DisplayName != "ok" {
		t.Errorf("display name should default to name, got %q", repo.templates["ok"].DisplayName)
	}
}

func TestDeleteBuiltinTemplateRejected(t *testing.T) {
	repo, registry := templateFixture(t)
	svc := NewTemplateService(registry, repo, testLogger())

	err := svc.DeleteTemplate(context.Background(), "policy_review")
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflictErr.ResourceType != "template" || conflictErr.ResourceID != "policy_review" {
		t.Errorf("conflict = %+v", conflictErr)
	}

	repo.templates["mine"] = template.Template{Name: "mine", Sections: []template.Section{{Key: "a"}}}
	if err := svc.DeleteTemplate(context.Background(), "mine"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if err := svc.DeleteTemplate(context.Background(), "mine"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
