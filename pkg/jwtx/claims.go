// Package jwtx is the signed token codec for the identity service. It builds
// and verifies the access and refresh tokens issued by the auth service.
//
// Both token kinds share one signing key and are distinguished by the
// token_use claim, which sits inside the signed payload so it cannot be
// swapped without breaking the signature.
package jwtx

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lockhaven/identity/pkg/idx"
)

// TokenUse discriminates access tokens from refresh tokens.
type TokenUse string

const (
	UseAccess  TokenUse = "access"
	UseRefresh TokenUse = "refresh"
)

// Default token lifetimes, used when a user has no auth settings row and the
// operator configured nothing else.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the signed payload embedded in every token. Access tokens carry a
// snapshot of the user's effective roles at issuance time; refresh tokens
// carry identity only.
type Claims struct {
	jwt.RegisteredClaims

	// TokenUse is "access" or "refresh".
	TokenUse TokenUse `json:"token_use,omitempty"`

	// UserID is the numeric user key, duplicated from the subject so callers
	// don't need to parse it back out of a string.
	UserID int64 `json:"uid,omitempty"`

	// Username at issuance time.
	Username string `json:"username,omitempty"`

	// Roles is the effective role snapshot ("application:role" strings).
	// Access tokens only.
	Roles []string `json:"roles,omitempty"`
}

// NewAccessClaims builds the claims for an access token.
func NewAccessClaims(
	userID int64,
	username string,
	roles []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	c := newBaseClaims(userID, username, ttl, issuer, now)
	c.TokenUse = UseAccess
	c.Roles = roles
	return c
}

// NewRefreshClaims builds the claims for a refresh token. No roles: the
// effective role set is recomputed when the token is redeemed.
func NewRefreshClaims(
	userID int64,
	username string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	c := newBaseClaims(userID, username, ttl, issuer, now)
	c.TokenUse = UseRefresh
	return c
}

func newBaseClaims(userID int64, username string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		UserID:   userID,
		Username: username,
	}
}

// validateIssuer checks the iss claim against the expected value.
// Empty expected means nothing to enforce.
func (c *Claims) validateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// validateUse rejects a token presented for the wrong purpose.
func (c *Claims) validateUse(expected TokenUse) error {
	if c.TokenUse != expected {
		return ErrWrongUse
	}
	return nil
}

// validateExpiryAt enforces exp and nbf with zero tolerance: a token whose
// expiry equals the current instant is already expired. Clock skew between
// issuer and verifier is not this layer's problem; the service signs and
// verifies with the same clock.
func (c *Claims) validateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaims
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
