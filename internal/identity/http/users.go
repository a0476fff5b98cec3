package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/pkg/httpx"
)

// UsersHandler serves the administrative user endpoints.
type UsersHandler struct {
	UserService       *service.UserService
	PermissionService *service.PermissionService
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.AccountCredentials
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)

	users, err := h.UserService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword lets a user rotate their own password. Admins included:
// there is no admin override, the current password is always required.
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if httpx.UserIDFromContext(r.Context()) != userID {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "cannot change another user's password")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEffectiveRoles returns the user's resolved role set, direct and
// inherited combined.
func (h *UsersHandler) HandleEffectiveRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.UserService.GetUserByID(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	grants, err := h.PermissionService.EffectiveRoles(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	roles := make([]string, len(grants))
	for i, g := range grants {
		roles[i] = g.String()
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *UsersHandler) HandleGrantRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}

	if err := h.PermissionService.GrantUserRole(r.Context(), userID, roleID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) HandleRevokeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}

	if err := h.PermissionService.RevokeUserRole(r.Context(), userID, roleID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) HandleJoinGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	if err := h.PermissionService.AddUserToGroup(r.Context(), userID, groupID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	if err := h.PermissionService.RemoveUserFromGroup(r.Context(), userID, groupID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses an int64 path value.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid "+name+" path value")
		return 0, false
	}
	return id, true
}
