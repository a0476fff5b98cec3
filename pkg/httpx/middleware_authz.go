package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole passes the request through when the caller's token carries
// at least one of the required "application:role" grants. Must run inside
// AuthnMiddleware.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, r := range required {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, have := range RolesFromContext(r.Context()) {
				if _, ok := want[have]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeRoleError(w, required...)
		})
	}
}

// RFC 6750-style error response for missing role grants.
func writeRoleError(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteError(w, http.StatusForbidden, "insufficient_role", "caller lacks a required role")
}
