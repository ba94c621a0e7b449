package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/service"
)

// CommentsHandler handles comment endpoints.
type CommentsHandler struct {
	Comments *service.CommentService
	Logger   zerolog.Logger
}

type createCommentRequest struct {
	ItemID          string  `json:"itemId"`
	Content         string  `json:"content"`
	ParentCommentID *string `json:"parentCommentId"`
}

// Create handles POST /api/comments.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Comments.Create(r.Context(), GetClaims(r.Context()), service.NewComment{
		ItemID:          req.ItemID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// List handles GET /api/comments/{itemId}.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Comments.List(r.Context(), GetClaims(r.Context()), chi.URLParam(r, "itemId"))
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, comments)
}
