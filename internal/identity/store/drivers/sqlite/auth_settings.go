package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
)

type authSettingsRepo struct {
	q querier
}

func (r *authSettingsRepo) GetByUsername(ctx context.Context, username string) (domain.UserAuthSettings, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.refresh_token_enabled, s.refresh_token_expiration, s.auth_token_expiration
		FROM user_auth_settings s
		JOIN users u ON u.id = s.user_id
		WHERE u.username = ?`, username)
	return scanAuthSettings(row)
}

func (r *authSettingsRepo) GetByUserID(ctx context.Context, userID int64) (domain.UserAuthSettings, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, refresh_token_enabled, refresh_token_expiration, auth_token_expiration
		FROM user_auth_settings WHERE user_id = ?`, userID)
	return scanAuthSettings(row)
}

func (r *authSettingsRepo) UpsertSettings(ctx context.Context, settings domain.UserAuthSettings) (domain.UserAuthSettings, error) {
	refreshSecs := durationToSeconds(settings.RefreshTokenExpiration)
	authSecs := durationToSeconds(settings.AuthTokenExpiration)

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO user_auth_settings (user_id, refresh_token_enabled, refresh_token_expiration, auth_token_expiration)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			refresh_token_enabled = excluded.refresh_token_enabled,
			refresh_token_expiration = excluded.refresh_token_expiration,
			auth_token_expiration = excluded.auth_token_expiration`,
		settings.UserID, settings.RefreshTokenEnabled, refreshSecs, authSecs)
	if err != nil {
		return domain.UserAuthSettings{}, err
	}

	return r.GetByUserID(ctx, settings.UserID)
}

func scanAuthSettings(row rowScanner) (domain.UserAuthSettings, error) {
	var (
		s           domain.UserAuthSettings
		id          int64
		refreshSecs sql.NullInt64
		authSecs    sql.NullInt64
	)
	if err := row.Scan(&id, &s.UserID, &s.RefreshTokenEnabled, &refreshSecs, &authSecs); err != nil {
		return domain.UserAuthSettings{}, mapNotFound(err)
	}
	s.ID = &id
	s.RefreshTokenExpiration = secondsToDuration(refreshSecs)
	s.AuthTokenExpiration = secondsToDuration(authSecs)
	return s, nil
}

func durationToSeconds(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(d.Seconds()), Valid: true}
}

func secondsToDuration(n sql.NullInt64) *time.Duration {
	if !n.Valid {
		return nil
	}
	d := time.Duration(n.Int64) * time.Second
	return &d
}
