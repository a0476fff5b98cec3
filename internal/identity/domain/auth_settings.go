package domain

import "time"

// UserAuthSettings are per-user token policy overrides. One row per user is
// expected; users without a row get system defaults. Written only by the
// administrative path, read on every authenticate and refresh.
type UserAuthSettings struct {
	ID                     *int64 // nil until persisted
	UserID                 int64
	RefreshTokenEnabled    bool
	RefreshTokenExpiration *time.Duration // nil means system default
	AuthTokenExpiration    *time.Duration // nil means system default
}
