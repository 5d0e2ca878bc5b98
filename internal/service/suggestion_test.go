package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"redline/internal/domain"
	"redline/internal/domain/models"
	"redline/internal/domain/models/doc"
	"redline/internal/domain/services"
)

func suggestionFixture(t *testing.T) (services.SuggestionService, string) {
	t.Helper()
	docRepo := newFakeDocRepo()
	docRepo.docs["doc_1"] = &models.Document{ID: "doc_1", Title: "Doc", Markdown: "text"}
	return NewSuggestionService(newFakeSuggestionRepo(), docRepo, testLogger()), "doc_1"
}

func TestCreateSuggestionStartsPending(t *testing.T) {
	svc, docID := suggestionFixture(t)

	sug, err := svc.CreateSuggestion(context.Background(), docID, &services.CreateSuggestionRequest{
		BlockID:      "b1",
		SelectedText: "very rapid",
		ImprovedText: "swift",
		Reason:       "Shorter.",
	})
	if err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	if !strings.HasPrefix(sug.ID, "ai_") {
		t.Errorf("id = %q, want ai_ prefix", sug.ID)
	}
	if sug.Status != doc.SuggestionPending {
		t.Errorf("status = %s, want pending", sug.Status)
	}
}

func TestCreateSuggestionValidation(t *testing.T) {
	svc, docID := suggestionFixture(t)

	_, err := svc.CreateSuggestion(context.Background(), docID, &services.CreateSuggestionRequest{
		BlockID:      "b1",
		SelectedText: "text",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing improved text: err = %v, want ErrValidation", err)
	}
}

func TestUpdateSuggestionStatus(t *testing.T) {
	svc, docID := suggestionFixture(t)

	sug, err := svc.CreateSuggestion(context.Background(), docID, &services.CreateSuggestionRequest{
		BlockID:      "b1",
		SelectedText: "very rapid",
		ImprovedText: "swift",
	})
	if err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), docID, sug.ID, doc.SuggestionAccepted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != doc.SuggestionAccepted {
		t.Errorf("status = %s, want accepted", updated.Status)
	}

	_, err = svc.UpdateStatus(context.Background(), docID, sug.ID, "bogus")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bogus status: err = %v, want ErrValidation", err)
	}
}

func TestDeleteSuggestion(t *testing.T) {
	svc, docID := suggestionFixture(t)

	sug, _ := svc.CreateSuggestion(context.Background(), docID, &services.CreateSuggestionRequest{
		BlockID:      "b1",
		SelectedText: "a",
		ImprovedText: "b",
	})

	if err := svc.DeleteSuggestion(context.Background(), docID, sug.ID); err != nil {
		t.Fatalf("DeleteSuggestion: %v", err)
	}
	if err := svc.DeleteSuggestion(context.Background(), docID, sug.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
