// Package client is a typed HTTP client for the review API. It mirrors the
// server's routes one method per endpoint; errors carry the server's problem
// detail and no retries happen here.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"redline/internal/domain/models"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/services"
	"redline/internal/template"
)

// Client talks to a running review server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

// do sends a request and decodes the JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		detail := string(data)
		if json.Unmarshal(data, &problem) == nil {
			if problem.Detail != "" {
				detail = problem.Detail
			} else if problem.Title != "" {
				detail = problem.Title
			}
		}
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateDocument creates a new document from markdown.
func (c *Client) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	var out models.Document
	if err := c.do(ctx, http.MethodPost, "/api/review/documents", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments lists document summaries, newest first.
func (c *Client) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	var out struct {
		Documents []models.DocumentSummary `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/review/documents", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// GetDocument retrieves a document with its block metadata.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var out models.Document
	if err := c.do(ctx, http.MethodGet, "/api/review/documents/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDocument saves editor state for a document.
func (c *Client) UpdateDocument(ctx context.Context, id string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	var out models.Document
	if err := c.do(ctx, http.MethodPut, "/api/review/documents/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMarkdown replaces the document text wholesale.
func (c *Client) UpdateMarkdown(ctx context.Context, id, markdown string) (*models.Document, error) {
	body := map[string]string{"markdown": markdown}
	var out models.Document
	if err := c.do(ctx, http.MethodPut, "/api/review/documents/"+url.PathEscape(id)+"/markdown", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument deletes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/review/documents/"+url.PathEscape(id), nil, nil)
}

// CreateComment creates a root comment on a block.
func (c *Client) CreateComment(ctx context.Context, documentID string, req *services.CreateCommentRequest) (*doc.Comment, error) {
	var out doc.Comment
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListComments lists root comments with nested replies. blockID filters to
// one block when non-empty.
func (c *Client) ListComments(ctx context.Context, documentID, blockID string) ([]doc.Comment, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/comments"
	if blockID != "" {
		path += "?block_id=" + url.QueryEscape(blockID)
	}
	var out struct {
		Comments []doc.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

// UnresolvedCounts returns unresolved root-comment counts per block.
func (c *Client) UnresolvedCounts(ctx context.Context, documentID string) (map[string]int, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/comments/counts"
	var out struct {
		Counts map[string]int `json:"counts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Counts, nil
}

// Reply adds a reply under a root comment.
func (c *Client) Reply(ctx context.Context, documentID, commentID string, req *services.ReplyRequest) (*doc.Comment, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/comments/" + url.PathEscape(commentID) + "/reply"
	var out doc.Comment
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleResolved flips a comment's resolved flag.
func (c *Client) ToggleResolved(ctx context.Context, documentID, commentID string) (*doc.Comment, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/comments/" + url.PathEscape(commentID) + "/resolve"
	var out doc.Comment
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateComment updates a comment's text or anchor offsets.
func (c *Client) UpdateComment(ctx context.Context, documentID, commentID string, req *services.UpdateCommentRequest) (*doc.Comment, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/comments/" + url.PathEscape(commentID)
	var out doc.Comment
	if err := c.do(ctx, http.MethodPatch, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment deletes a comment and its replies.
func (c *Client) DeleteComment(ctx context.Context, documentID, commentID string) error {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/comments/" + url.PathEscape(commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateSuggestion records a pending suggestion against a block.
func (c *Client) CreateSuggestion(ctx context.Context, documentID string, req *services.CreateSuggestionRequest) (*doc.Suggestion, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/suggestions"
	var out doc.Suggestion
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSuggestions lists a document's suggestions, oldest first.
func (c *Client) ListSuggestions(ctx context.Context, documentID string) ([]doc.Suggestion, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/suggestions"
	var out struct {
		Suggestions []doc.Suggestion `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// UpdateSuggestionStatus moves a suggestion to accepted or rejected.
func (c *Client) UpdateSuggestionStatus(ctx context.Context, documentID, suggestionID string, status doc.SuggestionStatus) (*doc.Suggestion, error) {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/suggestions/" + url.PathEscape(suggestionID)
	body := map[string]doc.SuggestionStatus{"status": status}
	var out doc.Suggestion
	if err := c.do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSuggestion deletes a suggestion.
func (c *Client) DeleteSuggestion(ctx context.Context, documentID, suggestionID string) error {
	path := "/api/review/documents/" + url.PathEscape(documentID) + "/suggestions/" + url.PathEscape(suggestionID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ImproveText asks the server for an improved rendition of text.
func (c *Client) ImproveText(ctx context.Context, req *services.ImproveRequest) (*services.ImproveResult, error) {
	var out services.ImproveResult
	if err := c.do(ctx, http.MethodPost, "/api/review/improve", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTemplates lists all templates, built-in and uploaded.
func (c *Client) ListTemplates(ctx context.Context) ([]template.Template, error) {
	var out struct {
		Templates []template.Template `json:"templates"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/review/templates", nil, &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

// GetTemplate retrieves a template by name.
func (c *Client) GetTemplate(ctx context.Context, name string) (*template.Template, error) {
	var out template.Template
	if err := c.do(ctx, http.MethodGet, "/api/review/templates/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreTemplate creates or replaces an uploaded template.
func (c *Client) StoreTemplate(ctx context.Context, tpl *template.Template) error {
	return c.do(ctx, http.MethodPost, "/api/review/templates", tpl, nil)
}

// DeleteTemplate deletes an uploaded template.
func (c *Client) DeleteTemplate(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/review/templates/"+url.PathEscape(name), nil, nil)
}
