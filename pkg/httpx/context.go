package httpx

import (
	"context"

	"github.com/lockhaven/identity/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"
	ctxKeyRoles  ctxKey = "roles"
	ctxKeyClaims ctxKey = "claims"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, c.UserID)
	ctx = context.WithValue(ctx, ctxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, ctxKeyClaims, c)
	return ctx
}

// UserIDFromContext returns the authenticated user ID, or 0 when the request
// did not pass through AuthnMiddleware.
func UserIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(ctxKeyUserID).(int64); ok {
		return v
	}
	return 0
}

// RolesFromContext returns the "application:role" strings embedded in the
// caller's access token.
func RolesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(ctxKeyRoles).([]string); ok {
		return v
	}
	return nil
}

// ClaimsFromContext returns the full verified claims.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return v, ok
}
