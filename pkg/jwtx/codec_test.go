package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lockhaven/identity/pkg/cryptox"
)

func newTestSigner(t *testing.T, kid string) Signer {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	return signer
}

func newTestVerifier(t *testing.T, signers ...Signer) *Verifier {
	t.Helper()

	keys := NewKeySet()
	for _, s := range signers {
		require.NoError(t, keys.AddSigner(s))
	}
	return NewVerifier(keys, "test-issuer")
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "key-1")
	verifier := newTestVerifier(t, signer)

	now := time.Now().UTC()
	claims := NewAccessClaims(42, "alice", []string{"identity:users-admin", "notes:editor"}, time.Minute, "test-issuer", now)

	tokenStr, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(tokenStr, UseAccess)
	require.NoError(t, err)
	require.Equal(t, int64(42), got.UserID)
	require.Equal(t, "42", got.Subject)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, UseAccess, got.TokenUse)
	require.ElementsMatch(t, []string{"identity:users-admin", "notes:editor"}, got.Roles)
	require.Equal(t, claims.ID, got.ID)
	require.Equal(t, claims.ExpiresAt.Unix(), got.ExpiresAt.Unix())
}

func TestRefreshClaimsCarryNoRoles(t *testing.T) {
	t.Parallel()

	claims := NewRefreshClaims(7, "bob", time.Hour, "test-issuer", time.Now().UTC())
	require.Equal(t, UseRefresh, claims.TokenUse)
	require.Empty(t, claims.Roles)
}

func TestWrongUseRejected(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "key-1")
	verifier := newTestVerifier(t, signer)
	now := time.Now().UTC()

	refresh, err := signer.Sign(NewRefreshClaims(1, "alice", time.Hour, "test-issuer", now))
	require.NoError(t, err)
	access, err := signer.Sign(NewAccessClaims(1, "alice", nil, time.Hour, "test-issuer", now))
	require.NoError(t, err)

	_, err = verifier.Verify(refresh, UseAccess)
	require.ErrorIs(t, err, ErrWrongUse)

	_, err = verifier.Verify(access, UseRefresh)
	require.ErrorIs(t, err, ErrWrongUse)
}

func TestExpiryBoundary(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "key-1")
	verifier := newTestVerifier(t, signer)

	issued := time.Now().UTC().Truncate(time.Second)
	tokenStr, err := signer.Sign(NewAccessClaims(1, "alice", nil, time.Minute, "test-issuer", issued))
	require.NoError(t, err)
	expiry := issued.Add(time.Minute)

	// expiry == now fails, no grace window
	verifier.now = func() time.Time { return expiry }
	_, err = verifier.Verify(tokenStr, UseAccess)
	require.ErrorIs(t, err, ErrExpired)

	// one instant before expiry succeeds
	verifier.now = func() time.Time { return expiry.Add(-time.Second) }
	_, err = verifier.Verify(tokenStr, UseAccess)
	require.NoError(t, err)
}

func TestNotYetValid(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "key-1")
	verifier := newTestVerifier(t, signer)

	issued := time.Now().UTC()
	tokenStr, err := signer.Sign(NewAccessClaims(1, "alice", nil, time.Minute, "test-issuer", issued))
	require.NoError(t, err)

	verifier.now = func() time.Time { return issued.Add(-time.Minute) }
	_, err = verifier.Verify(tokenStr, UseAccess)
	require.ErrorIs(t, err, ErrNotYetValid)
}

func TestForeignSignatureRejected(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "key-1")
	impostor := newTestSigner(t, "key-1") // same kid, different key
	verifier := newTestVerifier(t, signer)

	tokenStr, err := impostor.Sign(NewAccessClaims(1, "alice", nil, time.Minute, "test-issuer", time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(tokenStr, UseAccess)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestUnknownKID(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "key-1")
	stranger := newTestSigner(t, "key-2")
	verifier := newTestVerifier(t, signer)

	tokenStr, err := stranger.Sign(NewAccessClaims(1, "alice", nil, time.Minute, "test-issuer", time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(tokenStr, UseAccess)
	require.ErrorIs(t, err, ErrUnknownKID)
}

func TestMalformedToken(t *testing.T) {
	t.Parallel()

	verifier := newTestVerifier(t, newTestSigner(t, "key-1"))

	for _, tokenStr := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := verifier.Verify(tokenStr, UseAccess)
		require.ErrorIs(t, err, ErrMalformed, "token %q", tokenStr)
	}
}

func TestIssuerMismatch(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "key-1")
	verifier := newTestVerifier(t, signer)

	tokenStr, err := signer.Sign(NewAccessClaims(1, "alice", nil, time.Minute, "some-other-issuer", time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(tokenStr, UseAccess)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestES256RoundTrip(t *testing.T) {
	t.Parallel()

	pemKey, err := cryptox.GenerateES256Key()
	require.NoError(t, err)

	signer, err := NewSignerES256("ec-key", pemKey)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())

	verifier := newTestVerifier(t, signer)

	tokenStr, err := signer.Sign(NewAccessClaims(9, "carol", []string{"reports:viewer"}, time.Minute, "test-issuer", time.Now().UTC()))
	require.NoError(t, err)

	got, err := verifier.Verify(tokenStr, UseAccess)
	require.NoError(t, err)
	require.Equal(t, int64(9), got.UserID)
	require.Equal(t, []string{"reports:viewer"}, got.Roles)
}

func TestKeySetReadiness(t *testing.T) {
	t.Parallel()

	keys := NewKeySet()
	require.False(t, keys.IsReady())

	require.NoError(t, keys.AddSigner(newTestSigner(t, "key-1")))
	require.True(t, keys.IsReady())
	require.Len(t, keys.PublicJWKS().Keys, 1)

	_, err := keys.Get("nope")
	require.ErrorIs(t, err, ErrNoKey)
}
