package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/pkg/jwtx"
	"github.com/lockhaven/identity/pkg/slogx"
)

// TokenPolicy is a fully resolved token policy for one user: every field has
// a concrete value, with system defaults filled in wherever the user has no
// override.
type TokenPolicy struct {
	RefreshEnabled bool
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
}

// SettingsService resolves and manages per-user auth settings. Zero values
// for the default TTLs fall back to the package-wide token lifetimes.
type SettingsService struct {
	Store store.Store

	DefaultAccessTTL  time.Duration
	DefaultRefreshTTL time.Duration
}

// Resolve returns the token policy for a username. A user with no settings
// row (or an unknown username) resolves to the system default policy: refresh
// enabled, default lifetimes. Any other store error propagates; issuing
// tokens on defaults while a user's stored policy is unreadable would ignore
// a policy that may be stricter than the defaults.
func (s *SettingsService) Resolve(ctx context.Context, username string) (TokenPolicy, error) {
	policy := TokenPolicy{
		RefreshEnabled: true,
		AccessTTL:      s.accessDefault(),
		RefreshTTL:     s.refreshDefault(),
	}

	settings, err := s.Store.AuthSettings().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return policy, nil
		}
		slogx.FromContext(ctx).Warn("auth settings lookup failed",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return TokenPolicy{}, err
	}

	policy.RefreshEnabled = settings.RefreshTokenEnabled
	if settings.AuthTokenExpiration != nil {
		policy.AccessTTL = *settings.AuthTokenExpiration
	}
	if settings.RefreshTokenExpiration != nil {
		policy.RefreshTTL = *settings.RefreshTokenExpiration
	}
	return policy, nil
}

// GetForUser returns the stored settings for a user, materialising a default
// row on first access so administrators always have something to edit.
func (s *SettingsService) GetForUser(ctx context.Context, userID int64) (domain.UserAuthSettings, error) {
	settings, err := s.Store.AuthSettings().GetByUserID(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.UserAuthSettings{}, err
	}

	// Users().GetUserByID distinguishes "no settings yet" from "no such
	// user" before we create the row.
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		return domain.UserAuthSettings{}, err
	}

	return s.Store.AuthSettings().UpsertSettings(ctx, domain.UserAuthSettings{
		UserID:              userID,
		RefreshTokenEnabled: true,
	})
}

// UpdateForUser creates or replaces the settings row for settings.UserID.
func (s *SettingsService) UpdateForUser(ctx context.Context, settings domain.UserAuthSettings) (domain.UserAuthSettings, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, settings.UserID); err != nil {
		return domain.UserAuthSettings{}, err
	}
	return s.Store.AuthSettings().UpsertSettings(ctx, settings)
}

func (s *SettingsService) accessDefault() time.Duration {
	if s.DefaultAccessTTL > 0 {
		return s.DefaultAccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *SettingsService) refreshDefault() time.Duration {
	if s.DefaultRefreshTTL > 0 {
		return s.DefaultRefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}
