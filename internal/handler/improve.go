package handler

import (
	"log/slog"
	"net/http"

	"redline/internal/domain/services"
	"redline/internal/httputil"
)

// ImproveHandler handles improve-text HTTP requests
type ImproveHandler struct {
	improveService services.ImproveService
	logger         *slog.Logger
}

// NewImproveHandler creates a new improve handler
func NewImproveHandler(improveService services.ImproveService, logger *slog.Logger) *ImproveHandler {
	return &ImproveHandler{
		improveService: improveService,
		logger:         logger,
	}
}

// ImproveText rewrites the posted text via the model
// POST /api/review/improve
func (h *ImproveHandler) ImproveText(w http.ResponseWriter, r *http.Request) {
	var req services.ImproveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.improveService.ImproveText(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
