package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/pkg/httpx"
)

// maxTokenBody bounds the refresh/validate request bodies. Tokens are far
// smaller than this.
const maxTokenBody = 16 << 10

// AuthHandler serves the three token endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleAuthenticate serves POST /v1/auth: JSON credentials in, token pair
// out.
func (h *AuthHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var creds domain.AccountCredentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	token, err := h.AuthService.Authenticate(r.Context(), creds)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, token)
}

// HandleRefresh serves POST /v1/auth/refresh. The body is the raw refresh
// token.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	raw, ok := readRawToken(w, r)
	if !ok {
		return
	}

	token, err := h.AuthService.Refresh(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, token)
}

// HandleValidate serves POST /v1/auth/validate. The body is the raw access
// token; the response describes the authenticated user.
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	raw, ok := readRawToken(w, r)
	if !ok {
		return
	}

	authed, err := h.AuthService.ValidateToken(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authenticatedUserResponse(authed))
}

type userInfoResponse struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func authenticatedUserResponse(u domain.AuthenticatedUser) userInfoResponse {
	roles := make([]string, len(u.Roles))
	for i, g := range u.Roles {
		roles[i] = g.String()
	}
	return userInfoResponse{UserID: u.UserID, Username: u.Username, Roles: roles}
}

// readRawToken reads a bare token from the request body.
func readRawToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBody))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unreadable body")
		return "", false
	}
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token body is required")
		return "", false
	}
	return raw, true
}
