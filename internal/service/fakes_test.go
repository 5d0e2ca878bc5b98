package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"redline/internal/domain"
	"redline/internal/domain/models"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/repositories"
	"redline/internal/template"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeDocRepo struct {
	docs map[string]*models.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocRepo) Create(ctx context.Context, d *models.Document) error {
	if _, ok := r.docs[d.ID]; ok {
		return fmt.Errorf("document %s: %w", d.ID, domain.ErrConflict)
	}
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocRepo) List(ctx context.Context) ([]models.DocumentSummary, error) {
	var out []models.DocumentSummary
	for _, d := range r.docs {
		out = append(out, models.DocumentSummary{ID: d.ID, Title: d.Title, TemplateName: d.TemplateName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDocRepo) Update(ctx context.Context, d *models.Document) error {
	if _, ok := r.docs[d.ID]; !ok {
		return fmt.Errorf("document %s: %w", d.ID, domain.ErrNotFound)
	}
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

type fakeSuggestionRepo struct {
	sugs map[string]*doc.Suggestion
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{sugs: make(map[string]*doc.Suggestion)}
}

func (r *fakeSuggestionRepo) Create(ctx context.Context, sug *doc.Suggestion) error {
	cp := *sug
	r.sugs[sug.ID] = &cp
	return nil
}

func (r *fakeSuggestionRepo) GetByID(ctx context.Context, documentID, id string) (*doc.Suggestion, error) {
	s, ok := r.sugs[id]
	if !ok || s.DocumentID != documentID {
		return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSuggestionRepo) ListByDocument(ctx context.Context, documentID string) ([]doc.Suggestion, error) {
	var out []doc.Suggestion
	for _, s := range r.sugs {
		if s.DocumentID == documentID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSuggestionRepo) UpdateStatus(ctx context.Context, documentID, id string, status doc.SuggestionStatus) error {
	s, ok := r.sugs[id]
	if !ok || s.DocumentID != documentID {
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}
	s.Status = status
	return nil
}

func (r *fakeSuggestionRepo) Delete(ctx context.Context, documentID, id string) error {
	s, ok := r.sugs[id]
	if !ok || s.DocumentID != documentID {
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}
	delete(r.sugs, id)
	return nil
}

type fakeCommentRepo struct {
	comments map[string]*doc.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*doc.Comment)}
}

func (r *fakeCommentRepo) Create(ctx context.Context, c *doc.Comment) error {
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, documentID, id string) (*doc.Comment, error) {
	c, ok := r.comments[id]
	if !ok || c.DocumentID != documentID {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	cp.Replies = r.replies(id)
	return &cp, nil
}

func (r *fakeCommentRepo) replies(rootID string) []doc.Comment {
	var out []doc.Comment
	for _, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == rootID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeCommentRepo) ListByDocument(ctx context.Context, documentID, blockID string) ([]doc.Comment, error) {
	var out []doc.Comment
	for _, c := range r.comments {
		if c.DocumentID != documentID || c.ParentID != nil {
			continue
		}
		if blockID != "" && c.BlockID != blockID {
			continue
		}
		cp := *c
		cp.Replies = r.replies(c.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, c *doc.Comment) error {
	if _, ok := r.comments[c.ID]; !ok {
		return fmt.Errorf("comment %s: %w", c.ID, domain.ErrNotFound)
	}
	cp := *c
	cp.Replies = nil
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, documentID, id string) error {
	c, ok := r.comments[id]
	if !ok || c.DocumentID != documentID {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	delete(r.comments, id)
	for rid, rc := range r.comments {
		if rc.ParentID != nil && *rc.ParentID == id {
			delete(r.comments, rid)
		}
	}
	return nil
}

func (r *fakeCommentRepo) CountUnresolvedByBlock(ctx context.Context, documentID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, c := range r.comments {
		if c.DocumentID == documentID && c.ParentID == nil && !c.Resolved {
			counts[c.BlockID]++
		}
	}
	return counts, nil
}

type fakeTemplateRepo struct {
	templates map[string]template.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]template.Template)}
}

func (r *fakeTemplateRepo) Save(ctx context.Context, tpl *template.Template) error {
	r.templates[tpl.Name] = *tpl
	return nil
}

func (r *fakeTemplateRepo) GetByName(ctx context.Context, name string) (*template.Template, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
	}
	return &tpl, nil
}

func (r *fakeTemplateRepo) List(ctx context.Context) ([]template.Template, error) {
	var out []template.Template
	for _, tpl := range r.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTemplateRepo) Delete(ctx context.Context, name string) error {
	if _, ok := r.templates[name]; !ok {
		return fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
	}
	delete(r.templates, name)
	return nil
}

// fakeTxManager runs the function directly, no transaction semantics.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// fakeImprover upcases the text, or fails when told to.
type fakeImprover struct {
	fail bool
}

func (f fakeImprover) ImproveText(ctx context.Context, text, instruction string) (string, string, error) {
	if f.fail {
		return "", "", fmt.Errorf("model unavailable")
	}
	return strings.ToUpper(text), "made it louder", nil
}
