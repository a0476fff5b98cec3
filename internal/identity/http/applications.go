package http

import (
	"net/http"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/pkg/httpx"
)

// ApplicationsHandler serves application CRUD plus the roles nested under an
// application.
type ApplicationsHandler struct {
	ApplicationService *service.ApplicationService
	RoleService        *service.RoleService
}

type applicationResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type roleResponse struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
}

func toApplicationResponse(a domain.Application) applicationResponse {
	return applicationResponse{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt}
}

func toRoleResponse(r domain.Role) roleResponse {
	return roleResponse{ID: r.ID, ApplicationID: r.ApplicationID, Name: r.Name, CreatedAt: r.CreatedAt}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *ApplicationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.ApplicationService.CreateApplication(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (h *ApplicationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	apps, err := h.ApplicationService.ListApplications(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]applicationResponse, len(apps))
	for i, a := range apps {
		out[i] = toApplicationResponse(a)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"applications": out})
}

func (h *ApplicationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	appID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	app, err := h.ApplicationService.GetApplicationByID(r.Context(), appID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *ApplicationsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	appID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ApplicationService.DeleteApplication(r.Context(), appID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ApplicationsHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	appID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.ApplicationService.GetApplicationByID(r.Context(), appID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	roles, err := h.ApplicationService.ListRoles(r.Context(), appID)
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

func (h *ApplicationsHandler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	appID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := h.RoleService.CreateRole(r.Context(), appID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRoleResponse(role))
}
