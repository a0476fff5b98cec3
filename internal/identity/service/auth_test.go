package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/internal/identity/store/drivers/sqlite"
	"github.com/lockhaven/identity/pkg/cryptox"
	"github.com/lockhaven/identity/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

const testIssuer = "identity-test"

type testEnv struct {
	store  *sqlite.Store
	auth   *AuthService
	perms  *PermissionService
	users  *UserService
	config *SettingsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	perms := &PermissionService{Store: s}
	settings := &SettingsService{Store: s}

	return &testEnv{
		store: s,
		auth: &AuthService{
			Store:       s,
			Signer:      signer,
			Verifier:    jwtx.NewVerifier(keys, testIssuer),
			Issuer:      testIssuer,
			Permissions: perms,
			Settings:    settings,
		},
		perms:  perms,
		users:  &UserService{Store: s},
		config: settings,
	}
}

// seedUser creates a user plus an application/role grant in one call.
func (e *testEnv) seedUser(t *testing.T, username, password string, roles ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	user, err := e.users.CreateUser(ctx, username, password)
	require.NoError(t, err)

	if len(roles) == 0 {
		return user
	}

	app, err := e.store.Applications().GetApplicationByName(ctx, "web")
	if err != nil {
		app, err = e.store.Applications().CreateApplication(ctx, "web")
		require.NoError(t, err)
	}
	for _, name := range roles {
		role, err := e.store.Roles().GetRoleByName(ctx, app.ID, name)
		if err != nil {
			role, err = e.store.Roles().CreateRole(ctx, app.ID, name)
			require.NoError(t, err)
		}
		require.NoError(t, e.perms.GrantUserRole(ctx, user.ID, role.ID))
	}
	return user
}

func TestAuthenticateIssuesTokenPair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery", "editor")

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)
	require.NotEmpty(t, token.RefreshToken)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, int64(jwtx.DefaultAccessTokenTTL.Seconds()), token.ExpiresIn)

	authed, err := env.auth.ValidateToken(ctx, token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", authed.Username)
	require.Equal(t, []domain.RoleGrant{{Application: "web", Role: "editor"}}, authed.Roles)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery")

	_, unknownUserErr := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "nobody", Password: "whatever else",
	})
	_, wrongPasswordErr := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "not the password",
	})

	require.ErrorIs(t, unknownUserErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongPasswordErr, ErrInvalidCredentials)
	require.Equal(t, unknownUserErr.Error(), wrongPasswordErr.Error())
}

func TestAuthenticateCorruptHashIsServerError(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Bypass the service so the stored hash is garbage.
	_, err := env.store.Users().CreateUser(ctx, "broken", "not-a-phc-string")
	require.NoError(t, err)

	_, err = env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "broken", Password: "whatever",
	})
	require.Error(t, err)
	require.ErrorIs(t, err, cryptox.ErrCorruptHash)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshReResolvesRoles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "correct horse battery", "editor")

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)

	// Grant another role after login; the refreshed access token must
	// carry it.
	app, err := env.store.Applications().GetApplicationByName(ctx, "web")
	require.NoError(t, err)
	admin, err := env.store.Roles().CreateRole(ctx, app.ID, "admin")
	require.NoError(t, err)
	require.NoError(t, env.perms.GrantUserRole(ctx, user.ID, admin.ID))

	refreshed, err := env.auth.Refresh(ctx, token.RefreshToken)
	require.NoError(t, err)

	authed, err := env.auth.ValidateToken(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	require.Len(t, authed.Roles, 2)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "correct horse battery")

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, user.ID))

	_, err = env.auth.Refresh(ctx, token.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery")

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = env.auth.Refresh(ctx, token.AccessToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
	require.ErrorIs(t, err, jwtx.ErrWrongUse)
}

func TestValidateRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery")

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = env.auth.ValidateToken(ctx, token.RefreshToken)
	require.ErrorIs(t, err, jwtx.ErrWrongUse)
}

func TestValidateTokenNeedsNoStore(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery", "editor")

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)

	// A service with no store at all can still validate: any store access
	// would panic on the nil interface.
	detached := &AuthService{Verifier: env.auth.Verifier}
	authed, err := detached.ValidateToken(ctx, token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", authed.Username)
}

func TestRefreshDisabledByPolicy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "correct horse battery")

	_, err := env.config.UpdateForUser(ctx, domain.UserAuthSettings{
		UserID:              user.ID,
		RefreshTokenEnabled: false,
	})
	require.NoError(t, err)

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)
	require.Empty(t, token.RefreshToken)
}

func TestCustomAccessLifetimeFromSettings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "correct horse battery")

	ttl := 2 * time.Minute
	_, err := env.config.UpdateForUser(ctx, domain.UserAuthSettings{
		UserID:              user.ID,
		RefreshTokenEnabled: true,
		AuthTokenExpiration: &ttl,
	})
	require.NoError(t, err)

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, int64(120), token.ExpiresIn)
}

func TestExpiredRefreshRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery")

	// Issue tokens in the past so the refresh token is already expired.
	env.auth.now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }
	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.NoError(t, err)

	env.auth.now = nil
	_, err = env.auth.Refresh(ctx, token.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestEffectiveRolesUnionDeduplicates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "correct horse battery")

	app, err := env.store.Applications().CreateApplication(ctx, "web")
	require.NoError(t, err)
	editor, err := env.store.Roles().CreateRole(ctx, app.ID, "editor")
	require.NoError(t, err)
	viewer, err := env.store.Roles().CreateRole(ctx, app.ID, "viewer")
	require.NoError(t, err)

	group, err := env.store.Groups().CreateGroup(ctx, "staff")
	require.NoError(t, err)

	// editor both directly and through the group; viewer only through the
	// group.
	require.NoError(t, env.perms.GrantUserRole(ctx, user.ID, editor.ID))
	require.NoError(t, env.perms.GrantGroupRole(ctx, group.ID, editor.ID))
	require.NoError(t, env.perms.GrantGroupRole(ctx, group.ID, viewer.ID))
	require.NoError(t, env.perms.AddUserToGroup(ctx, user.ID, group.ID))

	grants, err := env.perms.EffectiveRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.RoleGrant{
		{RoleID: editor.ID, ApplicationID: app.ID, Application: "web", Role: "editor"},
		{RoleID: viewer.ID, ApplicationID: app.ID, Application: "web", Role: "viewer"},
	}, grants)
}

func TestSettingsResolveFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery")

	// No settings row, and even an unknown username, resolve to defaults.
	for _, username := range []string{"alice", "nobody"} {
		policy, err := env.config.Resolve(ctx, username)
		require.NoError(t, err)
		require.True(t, policy.RefreshEnabled)
		require.Equal(t, jwtx.DefaultAccessTokenTTL, policy.AccessTTL)
		require.Equal(t, jwtx.DefaultRefreshTokenTTL, policy.RefreshTTL)
	}
}

var errSettingsDown = errors.New("settings table unavailable")

// brokenSettingsStore delegates everything except the auth settings
// repository, which always errors.
type brokenSettingsStore struct {
	store.Store
}

func (brokenSettingsStore) AuthSettings() store.AuthSettings { return failingAuthSettings{} }

type failingAuthSettings struct{}

func (failingAuthSettings) GetByUsername(context.Context, string) (domain.UserAuthSettings, error) {
	return domain.UserAuthSettings{}, errSettingsDown
}

func (failingAuthSettings) GetByUserID(context.Context, int64) (domain.UserAuthSettings, error) {
	return domain.UserAuthSettings{}, errSettingsDown
}

func (failingAuthSettings) UpsertSettings(context.Context, domain.UserAuthSettings) (domain.UserAuthSettings, error) {
	return domain.UserAuthSettings{}, errSettingsDown
}

func TestSettingsResolvePropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	broken := &SettingsService{Store: brokenSettingsStore{Store: env.store}}
	_, err := broken.Resolve(ctx, "alice")
	require.ErrorIs(t, err, errSettingsDown)
}

func TestAuthenticateFailsWhenSettingsUnreadable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "correct horse battery")

	// Persist a policy that disables refresh tokens, then make the settings
	// table unreadable. Login must fail rather than fall back to defaults
	// that would hand out a refresh token the stored policy forbids.
	_, err := env.config.UpdateForUser(ctx, domain.UserAuthSettings{
		UserID:              user.ID,
		RefreshTokenEnabled: false,
	})
	require.NoError(t, err)

	env.auth.Settings = &SettingsService{Store: brokenSettingsStore{Store: env.store}}

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "correct horse battery",
	})
	require.ErrorIs(t, err, errSettingsDown)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
	require.Empty(t, token.AccessToken)
	require.Empty(t, token.RefreshToken)
}

func TestAuthenticateUnknownUserCostsAHashCheck(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "correct horse battery")

	hash, err := cryptox.HashPassword("correct horse battery")
	require.NoError(t, err)
	start := time.Now()
	_, err = cryptox.VerifyPassword("not the password", hash)
	require.NoError(t, err)
	baseline := time.Since(start)

	start = time.Now()
	_, err = env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "nobody", Password: "whatever",
	})
	elapsed := time.Since(start)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// The unknown-username path pays for a hash check too, so a miss cannot
	// be told apart from a wrong password by response time. Half the direct
	// verification cost leaves plenty of room for scheduler noise.
	require.Greater(t, elapsed, baseline/2)
}

func TestBootstrapSeedsAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	boot := &BootstrapService{Store: env.store, AdminPassword: "bootstrap-password"}
	require.NoError(t, boot.EnsureBootstrapped(ctx))

	token, err := env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: BootstrapAdminUsername, Password: "bootstrap-password",
	})
	require.NoError(t, err)

	authed, err := env.auth.ValidateToken(ctx, token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []domain.RoleGrant{
		{Application: BootstrapApplication, Role: BootstrapAdminRole},
	}, authed.Roles)

	// Idempotent: a second run must not touch the store.
	require.NoError(t, boot.EnsureBootstrapped(ctx))
	users, err := env.store.Users().ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "correct horse battery")

	err := env.users.ChangePassword(ctx, user.ID, "wrong password", "a new password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.users.ChangePassword(ctx, user.ID, "correct horse battery", "a new password"))

	_, err = env.auth.Authenticate(ctx, domain.AccountCredentials{
		Username: "alice", Password: "a new password",
	})
	require.NoError(t, err)
}
