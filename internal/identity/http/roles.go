package http

import (
	"net/http"
	"strconv"

	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/pkg/httpx"
)

// RolesHandler serves the flat role endpoints. Role creation lives under
// /applications since roles cannot exist outside one.
type RolesHandler struct {
	RoleService *service.RoleService
}

func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)

	roles, err := h.RoleService.ListRoles(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]roleResponse, len(roles))
	for i, role := range roles {
		out[i] = toRoleResponse(role)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	role, err := h.RoleService.GetRoleByID(r.Context(), roleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.RoleService.DeleteRole(r.Context(), roleID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
