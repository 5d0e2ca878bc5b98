package handler

import (
	"log/slog"
	"net/http"

	"redline/internal/domain/models/doc"
	"redline/internal/domain/services"
	"redline/internal/httputil"
)

// SuggestionHandler handles AI-suggestion HTTP requests
type SuggestionHandler struct {
	sugService services.SuggestionService
	logger     *slog.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(sugService services.SuggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		sugService: sugService,
		logger:     logger,
	}
}

// CreateSuggestion records a pending suggestion against a block
// POST /api/review/documents/{id}/suggestions
func (h *SuggestionHandler) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var req services.CreateSuggestionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sug, err := h.sugService.CreateSuggestion(r.Context(), documentID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, sug)
}

// ListSuggestions lists a document's suggestions, oldest first
// GET /api/review/documents/{id}/suggestions
func (h *SuggestionHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	sugs, err := h.sugService.ListSuggestions(r.Context(), documentID)
	if err != nil {
		handleError(w, err)
		return
	}
	if sugs == nil {
		sugs = []doc.Suggestion{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"suggestions": sugs,
		"total":       len(sugs),
	})
}

// UpdateStatus moves a suggestion to accepted or rejected. Status is the
// only mutable field.
// PATCH /api/review/documents/{id}/suggestions/{suggestionID}
func (h *SuggestionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	suggestionID, ok := PathParam(w, r, "suggestionID", "Suggestion ID")
	if !ok {
		return
	}

	var req struct {
		Status doc.SuggestionStatus `json:"status"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sug, err := h.sugService.UpdateStatus(r.Context(), documentID, suggestionID, req.Status)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sug)
}

// DeleteSuggestion deletes a suggestion
// DELETE /api/review/documents/{id}/suggestions/{suggestionID}
func (h *SuggestionHandler) DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	suggestionID, ok := PathParam(w, r, "suggestionID", "Suggestion ID")
	if !ok {
		return
	}

	if err := h.sugService.DeleteSuggestion(r.Context(), documentID, suggestionID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
