package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/service"
)

// multipartOverhead is allowed on top of the image size for the other form
// fields and part headers.
const multipartOverhead = 1 << 20

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Items         *service.ItemService
	MaxUploadSize int64
	Logger        zerolog.Logger
}

type updateItemRequest struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.ListAll(r.Context())
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// ListApproved handles GET /api/items/approved.
func (h *ItemsHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.ListApproved(r.Context())
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. The body is a multipart form with title,
// description and an optional image file.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	maxSize := h.MaxUploadSize
	if maxSize <= 0 {
		maxSize = imaging.MaxUploadSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			jsonError(w, http.StatusBadRequest, imaging.ErrTooLarge.Error())
			return
		case errors.Is(err, http.ErrNotMultipart):
			if err := r.ParseForm(); err != nil {
				jsonError(w, http.StatusBadRequest, "invalid form body")
				return
			}
		default:
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
	}

	in := service.NewItem{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	if r.MultipartForm != nil {
		file, _, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			in.Image = file
		case errors.Is(err, http.ErrMissingFile):
		default:
			jsonError(w, http.StatusBadRequest, "invalid image file")
			return
		}
	}

	item, err := h.Items.Create(r.Context(), GetClaims(r.Context()), in)
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. The status field is optional and
// defaults to approved.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		req.Status = r.FormValue("status")
	} else if err := decodeJSON(r, &req, true); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Items.SetStatus(r.Context(), GetClaims(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Items.Delete(r.Context(), GetClaims(r.Context()), chi.URLParam(r, "id")); err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, messageResponse{Message: "Item deleted"})
}
