// Package cryptox provides the credential and key primitives used by the
// identity service: argon2id password hashing, signing key generation, and
// random token material.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Tuned for interactive logins; changing them only
// affects new hashes since each encoded hash carries its own parameters.
const (
	saltLength  = 16
	iterations  = 3
	memory      = 64 * 1024
	parallelism = 2
	keyLength   = 32
)

// ErrCorruptHash reports a stored password hash that cannot be parsed.
// This is a data defect, not a wrong password.
var ErrCorruptHash = errors.New("cryptox: corrupt password hash")

// HashPassword generates a PHC-format argon2id hash including salt and
// parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-format argon2id
// hash. A mismatch is (false, nil); only an unreadable stored hash returns an
// error, which always wraps ErrCorruptHash.
func VerifyPassword(password, encodedHash string) (bool, error) {
	salt, expected, params, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		uint32(len(expected)), // #nosec G115 -- hash length is bounded by decode
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// fakeSalt feeds FakeVerify. The derived key is discarded, so a fixed salt
// is fine.
var fakeSalt = []byte("0123456789abcdef")

// FakeVerify burns the same argon2 work as VerifyPassword without a stored
// hash. Callers use it to keep an unknown-account failure as slow as a
// wrong-password failure.
func FakeVerify(password string) {
	argon2.IDKey([]byte(password), fakeSalt, iterations, memory, parallelism, keyLength)
}

type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// decodeHash parses "$argon2id$v=19$m=X,t=Y,p=Z$salt$hash".
func decodeHash(encoded string) ([]byte, []byte, hashParams, error) {
	var params hashParams

	parts := splitDollar(encoded)
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("%w: expected 6 segments, got %d", ErrCorruptHash, len(parts))
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("%w: unsupported variant %q", ErrCorruptHash, parts[1])
	}
	if parts[2] != "v=19" {
		return nil, nil, params, fmt.Errorf("%w: unsupported version %q", ErrCorruptHash, parts[2])
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.memory, &params.iterations, &params.parallelism); err != nil {
		return nil, nil, params, fmt.Errorf("%w: bad parameters: %v", ErrCorruptHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("%w: bad salt: %v", ErrCorruptHash, err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("%w: bad hash: %v", ErrCorruptHash, err)
	}
	if len(hash) == 0 {
		return nil, nil, params, fmt.Errorf("%w: empty hash", ErrCorruptHash)
	}

	return salt, hash, params, nil
}

func splitDollar(s string) []string {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(s) {
		if s[i] == '$' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// GeneratePassword returns a random 16-character alphanumeric password.
// Used for bootstrap accounts.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16

	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: generate password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
