package jwtx

import "errors"

var (
	// ErrMalformed reports a token that is not a well-formed JWT.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrInvalidSig reports a signature that does not verify.
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	// ErrUnknownKID reports a kid header with no matching public key.
	ErrUnknownKID = errors.New("jwtx: unknown kid")

	// ErrWrongUse reports a token presented for the wrong purpose, e.g. a
	// refresh token where an access token is required.
	ErrWrongUse = errors.New("jwtx: wrong token use")

	// ErrExpired reports a token at or past its expiry.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrNotYetValid reports a token used before its nbf instant.
	ErrNotYetValid = errors.New("jwtx: token not yet valid")

	// ErrIssuer reports an issuer mismatch.
	ErrIssuer = errors.New("jwtx: issuer mismatch")

	// ErrInvalidClaims reports a structurally valid token with an unusable
	// claim set (e.g. missing expiry).
	ErrInvalidClaims = errors.New("jwtx: invalid claims")

	// ErrNoKey reports a KeySet lookup miss.
	ErrNoKey = errors.New("jwtx: key not found")
)
