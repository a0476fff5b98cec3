package http

import (
	"net/http"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/pkg/httpx"
)

// SettingsHandler manages per-user auth settings. Expirations cross the wire
// in seconds, mirroring how they are stored.
type SettingsHandler struct {
	SettingsService *service.SettingsService
}

type settingsPayload struct {
	RefreshTokenEnabled       bool   `json:"refresh_token_enabled"`
	RefreshTokenExpirationSec *int64 `json:"refresh_token_expiration_sec,omitempty"`
	AuthTokenExpirationSec    *int64 `json:"auth_token_expiration_sec,omitempty"`
}

func toSettingsPayload(s domain.UserAuthSettings) settingsPayload {
	p := settingsPayload{RefreshTokenEnabled: s.RefreshTokenEnabled}
	if s.RefreshTokenExpiration != nil {
		sec := int64(s.RefreshTokenExpiration.Seconds())
		p.RefreshTokenExpirationSec = &sec
	}
	if s.AuthTokenExpiration != nil {
		sec := int64(s.AuthTokenExpiration.Seconds())
		p.AuthTokenExpirationSec = &sec
	}
	return p
}

// HandleGet materialises a default settings row on first read, so the
// response always reflects what the next login will use.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	settings, err := h.SettingsService.GetForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSettingsPayload(settings))
}

func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req settingsPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validExpiration(req.RefreshTokenExpirationSec) || !validExpiration(req.AuthTokenExpirationSec) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "expirations must be positive")
		return
	}

	settings := domain.UserAuthSettings{
		UserID:                 userID,
		RefreshTokenEnabled:    req.RefreshTokenEnabled,
		RefreshTokenExpiration: secondsPtr(req.RefreshTokenExpirationSec),
		AuthTokenExpiration:    secondsPtr(req.AuthTokenExpirationSec),
	}

	saved, err := h.SettingsService.UpdateForUser(r.Context(), settings)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSettingsPayload(saved))
}

func validExpiration(sec *int64) bool {
	return sec == nil || *sec > 0
}

func secondsPtr(sec *int64) *time.Duration {
	if sec == nil {
		return nil
	}
	d := time.Duration(*sec) * time.Second
	return &d
}
