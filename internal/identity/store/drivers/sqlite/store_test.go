package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestUsersCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u, err := s.Users().CreateUser(ctx, "alice", "hash-1")
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.Equal(t, "alice", u.Username)

	_, err = s.Users().CreateUser(ctx, "alice", "hash-2")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	_, err = s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "hash-3"))
	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hash-3", byID.PasswordHash)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestRolesScopedToApplication(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	app1, err := s.Applications().CreateApplication(ctx, "web")
	require.NoError(t, err)
	app2, err := s.Applications().CreateApplication(ctx, "api")
	require.NoError(t, err)

	r1, err := s.Roles().CreateRole(ctx, app1.ID, "admin")
	require.NoError(t, err)

	// Same role name in another application is fine.
	_, err = s.Roles().CreateRole(ctx, app2.ID, "admin")
	require.NoError(t, err)

	// Duplicate within the same application is not.
	_, err = s.Roles().CreateRole(ctx, app1.ID, "admin")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	found, err := s.Roles().GetRoleByName(ctx, app1.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, r1.ID, found.ID)

	roles, err := s.Roles().ListRolesForApplication(ctx, app1.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
}

func TestDeleteApplicationCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	app, err := s.Applications().CreateApplication(ctx, "web")
	require.NoError(t, err)
	role, err := s.Roles().CreateRole(ctx, app.ID, "admin")
	require.NoError(t, err)
	user, err := s.Users().CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	require.NoError(t, s.Permissions().GrantUserRole(ctx, user.ID, role.ID))

	require.NoError(t, s.Applications().DeleteApplication(ctx, app.ID))

	_, err = s.Roles().GetRoleByID(ctx, role.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	grants, err := s.Permissions().GetUserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestPermissionResolution(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	app, err := s.Applications().CreateApplication(ctx, "web")
	require.NoError(t, err)
	direct, err := s.Roles().CreateRole(ctx, app.ID, "editor")
	require.NoError(t, err)
	inherited, err := s.Roles().CreateRole(ctx, app.ID, "viewer")
	require.NoError(t, err)

	user, err := s.Users().CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	group, err := s.Groups().CreateGroup(ctx, "staff")
	require.NoError(t, err)

	require.NoError(t, s.Permissions().GrantUserRole(ctx, user.ID, direct.ID))
	require.NoError(t, s.Permissions().GrantGroupRole(ctx, group.ID, inherited.ID))
	require.NoError(t, s.Permissions().AddUserToGroup(ctx, user.ID, group.ID))

	userRoles, err := s.Permissions().GetUserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.RoleGrant{
		{RoleID: direct.ID, ApplicationID: app.ID, Application: "web", Role: "editor"},
	}, userRoles)

	groupRoles, err := s.Permissions().GetUserGroupRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.RoleGrant{
		{RoleID: inherited.ID, ApplicationID: app.ID, Application: "web", Role: "viewer"},
	}, groupRoles)

	// Leaving the group drops inherited roles but not direct grants.
	require.NoError(t, s.Permissions().RemoveUserFromGroup(ctx, user.ID, group.ID))
	groupRoles, err = s.Permissions().GetUserGroupRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, groupRoles)

	userRoles, err = s.Permissions().GetUserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, userRoles, 1)
}

func TestAuthSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.Users().CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	_, err = s.AuthSettings().GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)

	refresh := 48 * time.Hour
	saved, err := s.AuthSettings().UpsertSettings(ctx, domain.UserAuthSettings{
		UserID:                 user.ID,
		RefreshTokenEnabled:    false,
		RefreshTokenExpiration: &refresh,
	})
	require.NoError(t, err)
	require.NotNil(t, saved.ID)
	require.False(t, saved.RefreshTokenEnabled)
	require.Equal(t, refresh, *saved.RefreshTokenExpiration)
	require.Nil(t, saved.AuthTokenExpiration)

	// Upsert replaces the existing row rather than adding another.
	saved2, err := s.AuthSettings().UpsertSettings(ctx, domain.UserAuthSettings{
		UserID:              user.ID,
		RefreshTokenEnabled: true,
	})
	require.NoError(t, err)
	require.Equal(t, *saved.ID, *saved2.ID)
	require.True(t, saved2.RefreshTokenEnabled)
	require.Nil(t, saved2.RefreshTokenExpiration)

	byName, err := s.AuthSettings().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, *saved.ID, *byName.ID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().CreateUser(ctx, "alice", "hash"); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Users().GetUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, "alice", "hash")
		return err
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
}
