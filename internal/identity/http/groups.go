package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/pkg/httpx"
)

// GroupsHandler serves group CRUD and the group role grants.
type GroupsHandler struct {
	GroupService      *service.GroupService
	PermissionService *service.PermissionService
}

type groupResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toGroupResponse(g domain.Group) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}

func (h *GroupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := h.GroupService.CreateGroup(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (h *GroupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)

	groups, err := h.GroupService.ListGroups(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (h *GroupsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	group, err := h.GroupService.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

func (h *GroupsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.GroupService.DeleteGroup(r.Context(), groupID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupsHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.GroupService.GetGroupByID(r.Context(), groupID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	grants, err := h.PermissionService.GroupRoles(r.Context(), groupID)
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

func (h *GroupsHandler) HandleGrantRole(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}

	if err := h.PermissionService.GrantGroupRole(r.Context(), groupID, roleID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupsHandler) HandleRevokeRole(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}

	if err := h.PermissionService.RevokeGroupRole(r.Context(), groupID, roleID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
