package http

import (
	"net/http"

	"github.com/lockhaven/identity/pkg/httpx"
	"github.com/lockhaven/identity/pkg/jwtx"
)

// JWKSHandler exposes the public keys so other services can verify access
// tokens without calling /v1/auth/validate.
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
