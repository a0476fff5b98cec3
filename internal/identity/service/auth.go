package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/pkg/cryptox"
	"github.com/lockhaven/identity/pkg/jwtx"
	"github.com/lockhaven/identity/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password. Callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidRefresh covers any refresh token the server will not
	// honour: bad signature, expired, wrong use, or a subject that no
	// longer exists.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
)

// AuthService implements the three token operations: password login, refresh,
// and access token validation.
type AuthService struct {
	Store       store.Store
	Signer      jwtx.Signer
	Verifier    *jwtx.Verifier
	Issuer      string
	Permissions *PermissionService
	Settings    *SettingsService

	// now is injectable for tests.
	now func() time.Time
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Authenticate verifies a username/password pair and issues a token pair.
// Unknown usernames and wrong passwords both fail with ErrInvalidCredentials.
// A corrupt stored hash is a server-side fault and surfaces as an internal
// error, never as an authentication failure.
func (s *AuthService) Authenticate(ctx context.Context, creds domain.AccountCredentials) (domain.AuthToken, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the hashing work anyway so an unknown username is not
			// detectable by response time.
			cryptox.FakeVerify(creds.Password)
			l.Info("authentication failed", slog.String("username", creds.Username))
			return domain.AuthToken{}, ErrInvalidCredentials
		}
		return domain.AuthToken{}, err
	}

	ok, err := cryptox.VerifyPassword(creds.Password, user.PasswordHash)
	if err != nil {
		l.Error("stored password hash is unusable",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		return domain.AuthToken{}, err
	}
	if !ok {
		l.Info("authentication failed", slog.String("username", creds.Username))
		return domain.AuthToken{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh redeems a refresh token for a fresh token pair. The user's
// existence, effective roles, and token policy are all re-resolved at refresh
// time: role changes since login take effect here, and a deleted user cannot
// refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.AuthToken, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(refreshToken, jwtx.UseRefresh)
	if err != nil {
		l.Info("refresh token rejected", slog.Any("error", err))
		return domain.AuthToken{}, errors.Join(ErrInvalidRefresh, err)
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh token subject no longer exists", slog.Int64("user_id", claims.UserID))
			return domain.AuthToken{}, ErrInvalidRefresh
		}
		return domain.AuthToken{}, err
	}

	// A renamed user invalidates outstanding refresh tokens.
	if user.Username != claims.Username {
		l.Info("refresh token username mismatch", slog.Int64("user_id", user.ID))
		return domain.AuthToken{}, ErrInvalidRefresh
	}

	return s.issueTokens(ctx, user)
}

// ValidateToken verifies an access token and returns the authenticated user
// it describes. This is a pure decode: no store access, only the signed
// claims. The role snapshot is the one embedded at issuance time.
func (s *AuthService) ValidateToken(_ context.Context, accessToken string) (domain.AuthenticatedUser, error) {
	claims, err := s.Verifier.Verify(accessToken, jwtx.UseAccess)
	if err != nil {
		return domain.AuthenticatedUser{}, err
	}

	roles := make([]domain.RoleGrant, 0, len(claims.Roles))
	for _, raw := range claims.Roles {
		grant, err := domain.ParseRoleGrant(raw)
		if err != nil {
			return domain.AuthenticatedUser{}, errors.Join(jwtx.ErrInvalidClaims, err)
		}
		roles = append(roles, grant)
	}

	return domain.AuthenticatedUser{
		UserID:   claims.UserID,
		Username: claims.Username,
		Roles:    roles,
	}, nil
}

// issueTokens resolves the user's policy and roles, then signs an access
// token and, policy permitting, a refresh token.
func (s *AuthService) issueTokens(ctx context.Context, user domain.User) (domain.AuthToken, error) {
	now := s.clock()

	policy, err := s.Settings.Resolve(ctx, user.Username)
	if err != nil {
		return domain.AuthToken{}, err
	}

	grants, err := s.Permissions.EffectiveRoles(ctx, user.ID)
	if err != nil {
		return domain.AuthToken{}, err
	}
	roles := make([]string, len(grants))
	for i, g := range grants {
		roles[i] = g.String()
	}

	access, err := s.Signer.Sign(jwtx.NewAccessClaims(user.ID, user.Username, roles, policy.AccessTTL, s.Issuer, now))
	if err != nil {
		return domain.AuthToken{}, err
	}

	token := domain.AuthToken{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(policy.AccessTTL.Seconds()),
	}

	if policy.RefreshEnabled {
		refresh, err := s.Signer.Sign(jwtx.NewRefreshClaims(user.ID, user.Username, policy.RefreshTTL, s.Issuer, now))
		if err != nil {
			return domain.AuthToken{}, err
		}
		token.RefreshToken = refresh
	}

	return token, nil
}
