// Package identsdk is a small Go client for the identity service. It covers
// the token endpoints, key discovery, and the health probes; the
// administrative API is expected to be driven by operators, not SDK users.
package identsdk

import "github.com/lockhaven/identity/pkg/jwtx"

// TokenResponse is the body of a successful authenticate or refresh call.
type TokenResponse struct {
	// AccessToken is the signed JWT used to authenticate API requests.
	AccessToken string `json:"access_token"`

	// RefreshToken obtains new token pairs. Empty when refresh tokens are
	// disabled for the user.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// UserInfo describes a validated access token's subject.
type UserInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`

	// Roles are "application:role" strings from the token's role snapshot.
	Roles []string `json:"roles"`
}

// JWKSResponse is the public key set served at /.well-known/jwks.json.
type JWKSResponse = jwtx.JWKS

// HealthResponse is the body of the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of the service's critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
