package handler

import (
	"log/slog"
	"net/http"

	"taskhub/internal/domain/services"
	"taskhub/internal/httputil"
)

// UserHandler serves the user lookups used by the other services
type UserHandler struct {
	identity services.IdentityService
	logger   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(identity services.IdentityService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		identity: identity,
		logger:   logger,
	}
}

type userRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

func (h *UserHandler) Routes(rt Router) {
	rt.HandleFunc("GET /api/users/{id}/exists", h.UserExists)
	rt.HandleFunc("GET /api/users/{id}/username", h.Username)
	rt.HandleFunc("GET /api/users/by-username/{username}/id", h.UserIDByUsername)
}

// UserExists answers 200 for a known id and 404 otherwise
// GET /api/users/{id}/exists
func (h *UserHandler) UserExists(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, userRef{ID: user.ID})
}

// GET /api/users/{id}/username
func (h *UserHandler) Username(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, userRef{ID: user.ID, Username: user.Username})
}

// GET /api/users/by-username/{username}/id
func (h *UserHandler) UserIDByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetUserByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, userRef{ID: user.ID, Username: user.Username})
}
