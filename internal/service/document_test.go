package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"redline/internal/domain"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/services"
)

func TestCreateDocumentDerivesBlocksFromMarkdown(t *testing.T) {
	docRepo := newFakeDocRepo()
	svc := NewDocumentService(docRepo, newFakeSuggestionRepo(), fakeTxManager{}, testLogger())

	d, err := svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		Title:    "Retention Policy",
		Markdown: "# Purpose\n\nKeep records seven years.\n",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if !strings.HasPrefix(d.ID, "doc_") {
		t.Errorf("id = %q, want doc_ prefix", d.ID)
	}
	if len(d.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(d.Blocks))
	}
	if d.Blocks[0].Type != "heading" || d.Blocks[1].Type != "paragraph" {
		t.Errorf("block types = %s, %s", d.Blocks[0].Type, d.Blocks[1].Type)
	}
	if d.OriginalMarkdown != "" {
		t.Errorf("original markdown should be empty before first edit, got %q", d.OriginalMarkdown)
	}
}

func TestCreateDocumentKeepsCallerBlocks(t *testing.T) {
	svc := NewDocumentService(newFakeDocRepo(), newFakeSuggestionRepo(), fakeTxManager{}, testLogger())

	blocks := []doc.BlockMetadata{{ID: "b1", Type: "paragraph", Content: doc.StringContent("hello")}}
	d, err := svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		Title:    "Doc",
		Markdown: "hello",
		Blocks:   blocks,
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if len(d.Blocks) != 1 || d.Blocks[0].ID != "b1" {
		t.Errorf("caller blocks were not kept: %+v", d.Blocks)
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	svc := NewDocumentService(newFakeDocRepo(), newFakeSuggestionRepo(), fakeTxManager{}, testLogger())

	_, err := svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{Markdown: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing title: err = %v, want ErrValidation", err)
	}

	_, err = svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{Title: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing markdown: err = %v, want ErrValidation", err)
	}
}

func TestUpdateDocumentPreservesOriginalMarkdownOnce(t *testing.T) {
	docRepo := newFakeDocRepo()
	svc := NewDocumentService(docRepo, newFakeSuggestionRepo(), fakeTxManager{}, testLogger())

	d, err := svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		Title:    "Doc",
		Markdown: "first version",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	second := "second version"
	d, err = svc.UpdateDocument(context.Background(), d.ID, &services.UpdateDocumentRequest{Markdown: &second})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if d.OriginalMarkdown != "first version" {
		t.Errorf("original = %q, want first version", d.OriginalMarkdown)
	}

	third := "third version"
	d, err = svc.UpdateDocument(context.Background(), d.ID, &services.UpdateDocumentRequest{Markdown: &third})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if d.OriginalMarkdown != "first version" {
		t.Errorf("original changed on second edit: %q", d.OriginalMarkdown)
	}
	if d.Markdown != "third version" {
		t.Errorf("markdown = %q", d.Markdown)
	}
}

func TestUpdateDocumentRecordsSuggestionDecisions(t *testing.T) {
	docRepo := newFakeDocRepo()
	sugRepo := newFakeSuggestionRepo()
	svc := NewDocumentService(docRepo, sugRepo, fakeTxManager{}, testLogger())

	d, err := svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		Title:    "Doc",
		Markdown: "text",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	for _, id := range []string{"ai_1", "ai_2"} {
		sugRepo.sugs[id] = &doc.Suggestion{ID: id, DocumentID: d.ID, Status: doc.SuggestionPending}
	}

	_, err = svc.UpdateDocument(context.Background(), d.ID, &services.UpdateDocumentRequest{
		AcceptedSuggestionIDs: []string{"ai_1"},
		RejectedSuggestionIDs: []string{"ai_2"},
	})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if sugRepo.sugs["ai_1"].Status != doc.SuggestionAccepted {
		t.Errorf("ai_1 status = %s", sugRepo.sugs["ai_1"].Status)
	}
	if sugRepo.sugs["ai_2"].Status != doc.SuggestionRejected {
		t.Errorf("ai_2 status = %s", sugRepo.sugs["ai_2"].Status)
	}
}

func TestUpdateDocumentUnknownSuggestionFails(t *testing.T) {
	svc := NewDocumentService(newFakeDocRepo(), newFakeSuggestionRepo(), fakeTxManager{}, testLogger())

	d, err := svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		Title:    "Doc",
		Markdown: "text",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	_, err = svc.UpdateDocument(context.Background(), d.ID, &services.UpdateDocumentRequest{
		AcceptedSuggestionIDs: []string{"ai_missing"},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateMarkdownRebuildsBlocks(t *testing.T) {
	svc := NewDocumentService(newFakeDocRepo(), newFakeSuggestionRepo(), fakeTxManager{}, testLogger())

	d, err := svc.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		Title:    "Doc",
		Markdown: "one paragraph",
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	d, err = svc.UpdateMarkdown(context.Background(), d.ID, "# Heading\n\npara one\n\npara two\n")
	if err != nil {
		t.Fatalf("UpdateMarkdown: %v", err)
	}
	if len(d.Blocks) != 3 {
		t.Errorf("blocks = %d, want 3", len(d.Blocks))
	}
	if d.OriginalMarkdown != "one paragraph" {
		t.Errorf("original = %q", d.OriginalMarkdown)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	svc := NewDocumentService(newFakeDocRepo(), newFakeSuggestionRepo(), fakeTxManager{}, testLogger())

	_, err := svc.GetDocument(context.Background(), "doc_missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
