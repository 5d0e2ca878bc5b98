package handler

import (
	"log/slog"
	"net/http"

	"redline/internal/domain/models/doc"
	"redline/internal/domain/services"
	"redline/internal/httputil"
)

// CommentHandler handles review-comment HTTP requests
type CommentHandler struct {
	commentService services.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService services.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// CreateComment creates a root comment on a block
// POST /api/review/documents/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateComment(r.Context(), documentID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, comment)
}

// ListComments lists root comments with nested replies
// GET /api/review/documents/{id}/comments?block_id=:blockID
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	blockID := r.URL.Query().Get("block_id")

	comments, err := h.commentService.ListComments(r.Context(), documentID, blockID)
	if err != nil {
		handleError(w, err)
		return
	}
	if comments == nil {
		comments = []doc.Comment{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"comments": comments,
		"total":    len(comments),
	})
}

// UnresolvedCounts returns unresolved root-comment counts per block
// GET /api/review/documents/{id}/comments/counts
func (h *CommentHandler) UnresolvedCounts(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	counts, err := h.commentService.UnresolvedCounts(r.Context(), documentID)
	if err != nil {
		handleError(w, err)
		return
	}
	if counts == nil {
		counts = map[string]int{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

// Reply adds a reply under a root comment
// POST /api/review/documents/{id}/comments/{commentID}/reply
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	commentID, ok := PathParam(w, r, "commentID", "Comment ID")
	if !ok {
		return
	}

	var req services.ReplyRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.commentService.Reply(r.Context(), documentID, commentID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, reply)
}

// ToggleResolved flips a comment's resolved flag
// POST /api/review/documents/{id}/comments/{commentID}/resolve
func (h *CommentHandler) ToggleResolved(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	commentID, ok := PathParam(w, r, "commentID", "Comment ID")
	if !ok {
		return
	}

	comment, err := h.commentService.ToggleResolved(r.Context(), documentID, commentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comment)
}

// UpdateComment updates a comment's text or anchor offsets
// PATCH /api/review/documents/{id}/comments/{commentID}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	commentID, ok := PathParam(w, r, "commentID", "Comment ID")
	if !ok {
		return
	}

	var req services.UpdateCommentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.commentService.UpdateComment(r.Context(), documentID, commentID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comment)
}

// DeleteComment deletes a comment and its replies
// DELETE /api/review/documents/{id}/comments/{commentID}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	documentID, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}
	commentID, ok := PathParam(w, r, "commentID", "Comment ID")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(r.Context(), documentID, commentID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
