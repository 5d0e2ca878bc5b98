package handler

import (
	"log/slog"
	"net/http"

	"redline/internal/domain/services"
	"redline/internal/httputil"
	"redline/internal/template"
)

// TemplateHandler handles document-template HTTP requests
type TemplateHandler struct {
	tplService services.TemplateService
	logger     *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(tplService services.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		tplService: tplService,
		logger:     logger,
	}
}

// ListTemplates lists all templates, built-in and uploaded
// GET /api/review/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.tplService.ListTemplates(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if templates == nil {
		templates = []template.Template{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"templates": templates,
		"total":     len(templates),
	})
}

// GetTemplate retrieves a template by name
// GET /api/review/templates/{name}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	name, ok := PathParam(w, r, "name", "Template name")
	if !ok {
		return
	}

	tpl, err := h.tplService.GetTemplate(r.Context(), name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tpl)
}

// StoreTemplate creates or replaces an uploaded template
// POST /api/review/templates
func (h *TemplateHandler) StoreTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl template.Template
	if err := httputil.ParseJSON(w, r, &tpl); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.tplService.StoreTemplate(r.Context(), &tpl); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tpl)
}

// DeleteTemplate deletes an uploaded template
// DELETE /api/review/templates/{name}
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	name, ok := PathParam(w, r, "name", "Template name")
	if !ok {
		return
	}

	if err := h.tplService.DeleteTemplate(r.Context(), name); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
