package handler

import (
	"log/slog"
	"net/http"

	"taskhub/internal/domain/services"
	"taskhub/internal/httputil"
)

// AuthHandler exposes registration and the token endpoints
type AuthHandler struct {
	identity services.IdentityService
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity services.IdentityService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		logger:   logger,
	}
}

// Routes registers the auth endpoints. All of them are public.
func (h *AuthHandler) Routes(rt Router) {
	rt.HandleFunc("POST /api/auth/register", h.Register)
	rt.HandleFunc("POST /api/auth/login", h.Login)
	rt.HandleFunc("POST /api/auth/refresh", h.Refresh)
}

// PublicPaths lists the routes served without a bearer token
func (h *AuthHandler) PublicPaths() []string {
	return []string{"/api/auth/register", "/api/auth/login", "/api/auth/refresh"}
}

// Register creates an account
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !parseBody(w, r, &req) {
		return
	}

	user, err := h.identity.Register(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, user)
}

// Login issues a token pair
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !parseBody(w, r, &req) {
		return
	}

	pair, err := h.identity.Login(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, pair)
}

// Refresh rotates a token pair
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req services.RefreshRequest
	if !parseBody(w, r, &req) {
		return
	}

	pair, err := h.identity.Refresh(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, pair)
}
