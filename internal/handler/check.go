package handler

import (
	"log/slog"
	"net/http"

	"taskhub/internal/domain/models"
	"taskhub/internal/domain/services"
	"taskhub/internal/httputil"
)

// CheckHandler serves the membership checks other services relay to.
// Each answers with a bare status: 200 granted, 403 or 404 denied, 503
// when the store could not be consulted.
type CheckHandler struct {
	projectService services.ProjectService
	authz          services.ProjectAuthorizer
	logger         *slog.Logger
}

// NewCheckHandler creates a new check handler
func NewCheckHandler(projectService services.ProjectService, authz services.ProjectAuthorizer, logger *slog.Logger) *CheckHandler {
	return &CheckHandler{
		projectService: projectService,
		authz:          authz,
		logger:         logger,
	}
}

type checkResult struct {
	ProjectID int64  `json:"projectId"`
	UserID    string `json:"userId,omitempty"`
	Granted   bool   `json:"granted"`
}

func (h *CheckHandler) Routes(rt Router) {
	rt.HandleFunc("GET /api/projects/{id}/exists", h.ProjectExists)
	rt.HandleFunc("GET /api/projects/{id}/members/{userId}", h.IsProjectMember)
	rt.HandleFunc("GET /api/projects/{id}/members/{userId}/access", h.UserHasAccess)
	rt.HandleFunc("GET /api/projects/{id}/members/{userId}/role", h.UserHasRole)
}

// ProjectExists is granted when the project exists and the caller can see it
// GET /api/projects/{id}/exists
func (h *CheckHandler) ProjectExists(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	exists, err := h.projectService.ProjectExists(r.Context(), projectID, httputil.GetUserID(r))
	if err != nil {
		h.logger.Warn("existence check unavailable", "project_id", projectID, "error", err)
		httputil.RespondError(w, http.StatusServiceUnavailable, "membership store unavailable")
		return
	}
	if !exists {
		httputil.RespondError(w, http.StatusNotFound, "project not found")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, checkResult{ProjectID: projectID, Granted: true})
}

// GET /api/projects/{id}/members/{userId}/access
func (h *CheckHandler) UserHasAccess(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, http.StatusForbidden, func(projectID int64, userID string) services.Verdict {
		return h.authz.UserHasAccess(r.Context(), userID, projectID)
	})
}

// UserHasRole checks the member's role against allowedRoles, a comma
// separated list of role names. An empty or unknown list never grants.
// GET /api/projects/{id}/members/{userId}/role?allowedRoles=...
func (h *CheckHandler) UserHasRole(w http.ResponseWriter, r *http.Request) {
	allowed := models.ParseRoleSet(r.URL.Query().Get("allowedRoles"))
	h.check(w, r, http.StatusForbidden, func(projectID int64, userID string) services.Verdict {
		return h.authz.UserHasRole(r.Context(), userID, projectID, allowed)
	})
}

// GET /api/projects/{id}/members/{userId}
func (h *CheckHandler) IsProjectMember(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, http.StatusNotFound, func(projectID int64, userID string) services.Verdict {
		return h.authz.IsProjectMember(r.Context(), userID, projectID)
	})
}

func (h *CheckHandler) check(w http.ResponseWriter, r *http.Request, deniedStatus int, fn func(int64, string) services.Verdict) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID := r.PathValue("userId")

	switch fn(projectID, userID) {
	case services.VerdictGranted:
		httputil.RespondJSON(w, http.StatusOK, checkResult{ProjectID: projectID, UserID: userID, Granted: true})
	case services.VerdictUnavailable:
		httputil.RespondError(w, http.StatusServiceUnavailable, "membership store unavailable")
	default:
		httputil.RespondError(w, deniedStatus, "not permitted")
	}
}
