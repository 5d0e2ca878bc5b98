package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"redline/internal/domain"
	"redline/internal/domain/models"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/services"
	"redline/internal/template"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// stubDocService implements services.DocumentService with function fields so
// each test overrides only what it needs.
type stubDocService struct {
	create         func(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error)
	get            func(ctx context.Context, id string) (*models.Document, error)
	list           func(ctx context.Context) ([]models.DocumentSummary, error)
	update         func(ctx context.Context, id string, req *services.UpdateDocumentRequest) (*models.Document, error)
	updateMarkdown func(ctx context.Context, id, markdown string) (*models.Document, error)
	del            func(ctx context.Context, id string) error
}

func (s *stubDocService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	return s.create(ctx, req)
}
func (s *stubDocService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.get(ctx, id)
}
func (s *stubDocService) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	return s.list(ctx)
}
func (s *stubDocService) UpdateDocument(ctx context.Context, id string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	return s.update(ctx, id, req)
}
func (s *stubDocService) UpdateMarkdown(ctx context.Context, id string, markdown string) (*models.Document, error) {
	return s.updateMarkdown(ctx, id, markdown)
}
func (s *stubDocService) DeleteDocument(ctx context.Context, id string) error {
	return s.del(ctx, id)
}

func docMux(svc services.DocumentService) *http.ServeMux {
	h := NewDocumentHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/review/documents", h.ListDocuments)
	mux.HandleFunc("POST /api/review/documents", h.CreateDocument)
	mux.HandleFunc("GET /api/review/documents/{id}", h.GetDocument)
	mux.HandleFunc("PUT /api/review/documents/{id}", h.UpdateDocument)
	mux.HandleFunc("DELETE /api/review/documents/{id}", h.DeleteDocument)
	mux.HandleFunc("PUT /api/review/documents/{id}/markdown", h.UpdateMarkdown)
	return mux
}

func TestGetDocumentOK(t *testing.T) {
	svc := &stubDocService{
		get: func(ctx context.Context, id string) (*models.Document, error) {
			return &models.Document{ID: id, Title: "Doc"}, nil
		},
	}
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("GET", "/api/review/documents/doc_1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "doc_1" || got.Title != "Doc" {
		t.Errorf("body = %+v", got)
	}
}

func TestGetDocumentNotFoundIsProblemJSON(t *testing.T) {
	svc := &stubDocService{
		get: func(ctx context.Context, id string) (*models.Document, error) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		},
	}
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("GET", "/api/review/documents/doc_x", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}
	var problem struct {
		Status int    `json:"status"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problem.Status != 404 || !strings.Contains(problem.Detail, "doc_x") {
		t.Errorf("problem = %+v", problem)
	}
}

func TestCreateDocumentReturns201(t *testing.T) {
	svc := &stubDocService{
		create: func(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
			return &models.Document{ID: "doc_1", Title: req.Title, Markdown: req.Markdown}, nil
		},
	}
	body := strings.NewReader(`{"title":"Doc","markdown":"# Hi"}`)
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("POST", "/api/review/documents", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateDocumentBadJSON(t *testing.T) {
	svc := &stubDocService{}
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("POST", "/api/review/documents", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateDocumentValidationErrorIs400(t *testing.T) {
	svc := &stubDocService{
		create: func(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
			return nil, fmt.Errorf("%w: title cannot be blank", domain.ErrValidation)
		},
	}
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("POST", "/api/review/documents", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListDocumentsEmptyIsArrayNotNull(t *testing.T) {
	svc := &stubDocService{
		list: func(ctx context.Context) ([]models.DocumentSummary, error) { return nil, nil },
	}
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("GET", "/api/review/documents", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"documents":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUpdateMarkdownPassesBody(t *testing.T) {
	var gotMarkdown string
	svc := &stubDocService{
		updateMarkdown: func(ctx context.Context, id, markdown string) (*models.Document, error) {
			gotMarkdown = markdown
			return &models.Document{ID: id, Markdown: markdown}, nil
		},
	}
	body := strings.NewReader(`{"markdown":"# New"}`)
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("PUT", "/api/review/documents/doc_1/markdown", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotMarkdown != "# New" {
		t.Errorf("markdown = %q", gotMarkdown)
	}
}

func TestDeleteDocumentReturns204(t *testing.T) {
	svc := &stubDocService{
		del: func(ctx context.Context, id string) error { return nil },
	}
	rec := httptest.NewRecorder()
	docMux(svc).ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/review/documents/doc_1", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body should be empty, got %s", rec.Body.String())
	}
}

// stubCommentService covers the comment routes.
type stubCommentService struct {
	create  func(ctx context.Context, documentID string, req *services.CreateCommentRequest) (*doc.Comment, error)
	get     func(ctx context.Context, documentID, id string) (*doc.Comment, error)
	list    func(ctx context.Context, documentID, blockID string) ([]doc.Comment, error)
	reply   func(ctx context.Context, documentID, commentID string, req *services.ReplyRequest) (*doc.Comment, error)
	resolve func(ctx context.Context, documentID, id string) (*doc.Comment, error)
	update  func(ctx context.Context, documentID, id string, req *services.UpdateCommentRequest) (*doc.Comment, error)
	del     func(ctx context.Context, documentID, id string) error
	counts  func(ctx context.Context, documentID string) (map[string]int, error)
}

func (s *stubCommentService) CreateComment(ctx context.Context, documentID string, req *services.CreateCommentRequest) (*doc.Comment, error) {
	return s.create(ctx, documentID, req)
}
func (s *stubCommentService) GetComment(ctx context.Context, documentID, id string) (*doc.Comment, error) {
	return s.get(ctx, documentID, id)
}
func (s *stubCommentService) ListComments(ctx context.Context, documentID, blockID string) ([]doc.Comment, error) {
	return s.list(ctx, documentID, blockID)
}
func (s *stubCommentService) Reply(ctx context.Context, documentID, commentID string, req *services.ReplyRequest) (*doc.Comment, error) {
	return s.reply(ctx, documentID, commentID, req)
}
func (s *stubCommentService) ToggleResolved(ctx context.Context, documentID, id string) (*doc.Comment, error) {
	return s.resolve(ctx, documentID, id)
}
func (s *stubCommentService) UpdateComment(ctx context.Context, documentID, id string, req *services.UpdateCommentRequest) (*doc.Comment, error) {
	return s.update(ctx, documentID, id, req)
}
func (s *stubCommentService) DeleteComment(ctx context.Context, documentID, id string) error {
	return s.del(ctx, documentID, id)
}
func (s *stubCommentService) UnresolvedCounts(ctx context.Context, documentID string) (map[string]int, error) {
	return s.counts(ctx, documentID)
}

func commentMux(svc services.CommentService) *http.ServeMux {
	h := NewCommentHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/review/documents/{id}/comments", h.ListComments)
	mux.HandleFunc("POST /api/review/documents/{id}/comments", h.CreateComment)
	mux.HandleFunc("GET /api/review/documents/{id}/comments/counts", h.UnresolvedCounts)
	mux.HandleFunc("POST /api/review/documents/{id}/comments/{commentID}/resolve", h.ToggleResolved)
	return mux
}

func TestListCommentsForwardsBlockFilter(t *testing.T) {
	var gotDoc, gotBlock string
	svc := &stubCommentService{
		list: func(ctx context.Context, documentID, blockID string) ([]doc.Comment, error) {
			gotDoc, gotBlock = documentID, blockID
			return []doc.Comment{{ID: "c_1", BlockID: blockID}}, nil
		},
	}
	rec := httptest.NewRecorder()
	commentMux(svc).ServeHTTP(rec, httptest.NewRequest("GET", "/api/review/documents/doc_1/comments?block_id=b2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotDoc != "doc_1" || gotBlock != "b2" {
		t.Errorf("doc = %q, block = %q", gotDoc, gotBlock)
	}
}

func TestUnresolvedCountsRoute(t *testing.T) {
	svc := &stubCommentService{
		counts: func(ctx context.Context, documentID string) (map[string]int, error) {
			return map[string]int{"b1": 2}, nil
		},
	}
	rec := httptest.NewRecorder()
	commentMux(svc).ServeHTTP(rec, httptest.NewRequest("GET", "/api/review/documents/doc_1/comments/counts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"b1":2`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestResolveRouteExtractsBothParams(t *testing.T) {
	var gotDoc, gotComment string
	svc := &stubCommentService{
		resolve: func(ctx context.Context, documentID, id string) (*doc.Comment, error) {
			gotDoc, gotComment = documentID, id
			return &doc.Comment{ID: id, Resolved: true}, nil
		},
	}
	rec := httptest.NewRecorder()
	commentMux(svc).ServeHTTP(rec, httptest.NewRequest("POST", "/api/review/documents/doc_1/comments/c_9/resolve", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotDoc != "doc_1" || gotComment != "c_9" {
		t.Errorf("doc = %q, comment = %q", gotDoc, gotComment)
	}
}

// stubTemplateService covers the template routes.
type stubTemplateService struct {
	list  func(ctx context.Context) ([]template.Template, error)
	get   func(ctx context.Context, name string) (*template.Template, error)
	store func(ctx context.Context, tpl *template.Template) error
	del   func(ctx context.Context, name string) error
}

func (s *stubTemplateService) ListTemplates(ctx context.Context) ([]template.Template, error) {
	return s.list(ctx)
}
func (s *stubTemplateService) GetTemplate(ctx context.Context, name string) (*template.Template, error) {
	return s.get(ctx, name)
}
func (s *stubTemplateService) StoreTemplate(ctx context.Context, tpl *template.Template) error {
	return s.store(ctx, tpl)
}
func (s *stubTemplateService) DeleteTemplate(ctx context.Context, name string) error {
	return s.del(ctx, name)
}

func TestDeleteBuiltinTemplateConflictNamesResource(t *testing.T) {
	svc := &stubTemplateService{
		del: func(ctx context.Context, name string) error {
			return &domain.ConflictError{
				Message:      "template " + name + " is built in and cannot be deleted",
				ResourceType: "template",
				ResourceID:   name,
			}
		},
	}
	h := NewTemplateHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/review/templates/{name}", h.DeleteTemplate)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/review/templates/policy_review", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}
	var problem struct {
		Status       int    `json:"status"`
		Detail       string `json:"detail"`
		ResourceType string `json:"resource_type"`
		ResourceID   string `json:"resource_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problem.Status != 409 || problem.ResourceType != "template" || problem.ResourceID != "policy_review" {
		t.Errorf("problem = %+v", problem)
	}
}

// stubImproveService covers the improve route.
type stubImproveService struct {
	improve func(ctx context.Context, req *services.ImproveRequest) (*services.ImproveResult, error)
}

func (s *stubImproveService) ImproveText(ctx context.Context, req *services.ImproveRequest) (*services.ImproveResult, error) {
	return s.improve(ctx, req)
}

func TestImproveRoute(t *testing.T) {
	svc := &stubImproveService{
		improve: func(ctx context.Context, req *services.ImproveRequest) (*services.ImproveResult, error) {
			return &services.ImproveResult{
				Original: req.Text,
				Improved: "better " + req.Text,
				Reason:   "tightened",
				Success:  true,
			}, nil
		},
	}
	h := NewImproveHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/review/improve", h.ImproveText)

	body := strings.NewReader(`{"text":"wording","instruction":"shorter"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/review/improve", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var result services.ImproveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || result.Improved != "better wording" {
		t.Errorf("result = %+v", result)
	}
}
