package handler

import (
	"log/slog"
	"net/http"

	"taskhub/internal/domain/services"
	"taskhub/internal/httputil"
)

// MemberHandler handles membership HTTP requests
type MemberHandler struct {
	memberService services.MembershipService
	logger        *slog.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService services.MembershipService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

func (h *MemberHandler) Routes(rt Router) {
	rt.HandleFunc("GET /api/projects/{id}/members", h.ListMembers)
	rt.HandleFunc("POST /api/projects/{id}/members", h.AddMember)
	rt.HandleFunc("POST /api/projects/{id}/members/by-username", h.AddMemberByUsername)
	rt.HandleFunc("PUT /api/projects/{id}/members/{userId}", h.UpdateMemberRole)
	rt.HandleFunc("DELETE /api/projects/{id}/members/{userId}", h.RemoveMember)
}

// GET /api/projects/{id}/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), projectID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, members)
}

// AddMember adds a member by id, or changes the role of an existing one
// POST /api/projects/{id}/members
func (h *MemberHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	h.addMember(w, r, false)
}

// AddMemberByUsername is AddMember keyed by username
// POST /api/projects/{id}/members/by-username
func (h *MemberHandler) AddMemberByUsername(w http.ResponseWriter, r *http.Request) {
	h.addMember(w, r, true)
}

func (h *MemberHandler) addMember(w http.ResponseWriter, r *http.Request, byUsername bool) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if !parseBody(w, r, &req) {
		return
	}
	if byUsername {
		req.UserID = ""
	} else {
		req.Username = ""
	}

	if err := h.memberService.AddMember(r.Context(), projectID, httputil.GetUserID(r), &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/projects/{id}/members/{userId}
func (h *MemberHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateMemberRoleRequest
	if !parseBody(w, r, &req) {
		return
	}

	err := h.memberService.UpdateMemberRole(r.Context(), projectID, httputil.GetUserID(r), r.PathValue("userId"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/projects/{id}/members/{userId}
func (h *MemberHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.memberService.RemoveMember(r.Context(), projectID, httputil.GetUserID(r), r.PathValue("userId")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
