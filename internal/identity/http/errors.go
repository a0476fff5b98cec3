package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/pkg/httpx"
	"github.com/lockhaven/identity/pkg/jwtx"
	"github.com/lockhaven/identity/pkg/slogx"
)

// maxJSONBody bounds every JSON request body served by this package.
const maxJSONBody = 64 << 10

// decodeJSON decodes a size-limited JSON body into dst, writing a 400 itself
// on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return false
	}
	return true
}

// writeServiceError maps service and store errors onto HTTP responses.
// Anything unrecognised is a 500 with no detail leaked to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "refresh token rejected")
	case errors.Is(err, jwtx.ErrExpired),
		errors.Is(err, jwtx.ErrMalformed),
		errors.Is(err, jwtx.ErrInvalidSig),
		errors.Is(err, jwtx.ErrWrongUse),
		errors.Is(err, jwtx.ErrUnknownKID),
		errors.Is(err, jwtx.ErrNotYetValid),
		errors.Is(err, jwtx.ErrIssuer),
		errors.Is(err, jwtx.ErrInvalidClaims):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token rejected")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no such resource")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "already_exists", "resource already exists")
	case errors.Is(err, service.ErrUsernameInvalid),
		errors.Is(err, service.ErrPasswordTooWeak),
		errors.Is(err, service.ErrNameInvalid):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
