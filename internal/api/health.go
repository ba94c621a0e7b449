package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/service"
)

// HealthHandler reports liveness and store connectivity.
type HealthHandler struct {
	Health *service.HealthService
}

// Check handles GET /.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Health.Check(r.Context()))
}
