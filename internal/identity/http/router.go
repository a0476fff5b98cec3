// Package http wires the identity services onto net/http. Handlers stay
// thin: decode, call a service, encode.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/pkg/httpx"
	"github.com/lockhaven/identity/pkg/jwtx"
	"github.com/lockhaven/identity/pkg/slogx"
)

// adminRole gates every administrative endpoint.
var adminRole = service.BootstrapApplication + ":" + service.BootstrapAdminRole

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys      *jwtx.KeySet
	verifier  *jwtx.Verifier
	version   string
	startTime time.Time
	logger    *slog.Logger
	store     store.Store

	AuthService        *service.AuthService
	UserService        *service.UserService
	ApplicationService *service.ApplicationService
	RoleService        *service.RoleService
	GroupService       *service.GroupService
	PermissionService  *service.PermissionService
	SettingsService    *service.SettingsService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier *jwtx.Verifier,
	version string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		keys:      keys,
		verifier:  verifier,
		version:   version,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP applies the global middleware chain around the mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerApplications()
	r.registerRoles()
	r.registerGroups()
	r.registerSystem()
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.HandleFunc("POST /v1/auth", h.HandleAuthenticate)
	r.Mux.HandleFunc("POST /v1/auth/refresh", h.HandleRefresh)
	r.Mux.HandleFunc("POST /v1/auth/validate", h.HandleValidate)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		UserService:       r.UserService,
		PermissionService: r.PermissionService,
	}
	settings := &SettingsHandler{SettingsService: r.SettingsService}

	r.admin("POST /v1/users", h.HandleCreate)
	r.admin("GET /v1/users", h.HandleList)
	r.admin("GET /v1/users/{id}", h.HandleGet)
	r.admin("DELETE /v1/users/{id}", h.HandleDelete)

	// Password change is self-service, so authn only.
	r.authed("POST /v1/users/{id}/password", h.HandleChangePassword)

	r.admin("GET /v1/users/{id}/roles", h.HandleEffectiveRoles)
	r.admin("PUT /v1/users/{id}/roles/{roleID}", h.HandleGrantRole)
	r.admin("DELETE /v1/users/{id}/roles/{roleID}", h.HandleRevokeRole)
	r.admin("PUT /v1/users/{id}/groups/{groupID}", h.HandleJoinGroup)
	r.admin("DELETE /v1/users/{id}/groups/{groupID}", h.HandleLeaveGroup)

	r.admin("GET /v1/users/{id}/settings", settings.HandleGet)
	r.admin("PUT /v1/users/{id}/settings", settings.HandlePut)
}

func (r *Router) registerApplications() {
	h := &ApplicationsHandler{
		ApplicationService: r.ApplicationService,
		RoleService:        r.RoleService,
	}

	r.admin("POST /v1/applications", h.HandleCreate)
	r.admin("GET /v1/applications", h.HandleList)
	r.admin("GET /v1/applications/{id}", h.HandleGet)
	r.admin("DELETE /v1/applications/{id}", h.HandleDelete)
	r.admin("GET /v1/applications/{id}/roles", h.HandleListRoles)
	r.admin("POST /v1/applications/{id}/roles", h.HandleCreateRole)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RoleService: r.RoleService}

	r.admin("GET /v1/roles", h.HandleList)
	r.admin("GET /v1/roles/{id}", h.HandleGet)
	r.admin("DELETE /v1/roles/{id}", h.HandleDelete)
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{
		GroupService:      r.GroupService,
		PermissionService: r.PermissionService,
	}

	r.admin("POST /v1/groups", h.HandleCreate)
	r.admin("GET /v1/groups", h.HandleList)
	r.admin("GET /v1/groups/{id}", h.HandleGet)
	r.admin("DELETE /v1/groups/{id}", h.HandleDelete)
	r.admin("GET /v1/groups/{id}/roles", h.HandleListRoles)
	r.admin("PUT /v1/groups/{id}/roles/{roleID}", h.HandleGrantRole)
	r.admin("DELETE /v1/groups/{id}/roles/{roleID}", h.HandleRevokeRole)
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /.well-known/jwks.json", JWKSHandler(r.keys))
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.version))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.version, r.store, r.keys))
}

// authed registers a handler behind bearer authentication.
func (r *Router) authed(pattern string, h http.HandlerFunc) {
	r.Mux.Handle(pattern, httpx.Chain(h, httpx.AuthnMiddleware(r.verifier)))
}

// admin registers a handler behind bearer authentication plus the admin role.
func (r *Router) admin(pattern string, h http.HandlerFunc) {
	r.Mux.Handle(pattern, httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(adminRole),
	))
}
