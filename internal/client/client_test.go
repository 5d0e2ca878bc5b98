package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"redline/internal/domain/models/doc"
	"redline/internal/domain/services"
)

func TestClientRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/review/documents", func(w http.ResponseWriter, r *http.Request) {
		var req services.CreateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "doc_1", "title": req.Title})
	})
	mux.HandleFunc("GET /api/review/documents/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("block_id"); got != "b1" {
			t.Errorf("block_id = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"comments": []doc.Comment{{ID: "c_1", BlockID: "b1"}},
			"total":    1,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)

	d, err := c.CreateDocument(context.Background(), &services.CreateDocumentRequest{Title: "Doc", Markdown: "x"})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if d.ID != "doc_1" || d.Title != "Doc" {
		t.Errorf("doc = %+v", d)
	}

	comments, err := c.ListComments(context.Background(), "doc_1", "b1")
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != "c_1" {
		t.Errorf("comments = %+v", comments)
	}
}

func TestClientSurfacesProblemDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"type":   "about:blank",
			"title":  "Not Found",
			"status": 404,
			"detail": "document doc_x: not found",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetDocument(context.Background(), "doc_x")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %T %v, want *APIError", err, err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Detail != "document doc_x: not found" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestClientNoContentResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.DeleteDocument(context.Background(), "doc_1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
}
