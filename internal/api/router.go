// Package api exposes the lost & found services over HTTP.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/service"
)

// Options wires the services and optional endpoints into the router.
type Options struct {
	Auth     *service.AuthService
	Items    *service.ItemService
	Comments *service.CommentService
	Health   *service.HealthService

	// Uploads serves stored images under UploadsPath when set.
	Uploads     http.Handler
	UploadsPath string

	// Metrics instruments requests; MetricsPath exposes them when non-empty.
	Metrics     *metrics.Metrics
	MetricsPath string

	MaxUploadSize int64
	Logger        zerolog.Logger
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger.With().Str("component", "api").Logger()

	authHandler := &AuthHandler{Auth: opts.Auth, Logger: logger}
	itemsHandler := &ItemsHandler{Items: opts.Items, MaxUploadSize: opts.MaxUploadSize, Logger: logger}
	commentsHandler := &CommentsHandler{Comments: opts.Comments, Logger: logger}
	healthHandler := &HealthHandler{Health: opts.Health}

	authMW := AuthMiddleware(opts.Auth)
	requireAdmin := RequireRole(model.RoleAdmin)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(opts.Metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Public: health and accounts.
	r.Get("/", healthHandler.Check)
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Get("/api/items", itemsHandler.List)
		r.Get("/api/items/approved", itemsHandler.ListApproved)
		r.Post("/api/items", itemsHandler.Create)
		r.With(requireAdmin).Put("/api/items/{id}", itemsHandler.Update)
		r.With(requireAdmin).Delete("/api/items/{id}", itemsHandler.Delete)

		r.Post("/api/comments", commentsHandler.Create)
		r.Get("/api/comments/{itemId}", commentsHandler.List)
	})

	if opts.Uploads != nil && opts.UploadsPath != "" {
		r.Handle("/"+strings.Trim(opts.UploadsPath, "/")+"/*", opts.Uploads)
	}

	if opts.Metrics != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, opts.Metrics.Handler())
	}

	return r
}
