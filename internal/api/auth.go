package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	Auth   *service.AuthService
	Logger zerolog.Logger
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}

	jsonResponse(w, http.StatusOK, res)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}

	jsonResponse(w, http.StatusOK, res)
}
