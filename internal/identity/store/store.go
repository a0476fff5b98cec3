// Package store defines the data access contracts for the identity service.
// Concrete drivers live under drivers/.
package store

import (
	"context"
	"errors"

	"github.com/lockhaven/identity/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns separable in tests, and a transaction scope for multi-step
// writes.
type Store interface {
	Users() Users
	Applications() Applications
	Roles() Roles
	Groups() Groups
	Permissions() Permissions
	AuthSettings() AuthSettings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID looks a user up by primary key, e.g. from a refresh token
	// subject.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is the login-path lookup.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns it with the ID set.
	// A duplicate username fails with ErrAlreadyExists.
	CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error)

	// UpdatePasswordHash sets a new password hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error

	// DeleteUser cascades to grants, memberships, and auth settings.
	DeleteUser(ctx context.Context, userID int64) error

	// ListUsers pages through users ordered by id.
	ListUsers(ctx context.Context, limit int, offset int64) ([]domain.User, error)

	// IsEmpty reports whether any user exists. Used by bootstrap.
	IsEmpty(ctx context.Context) (bool, error)
}

type Applications interface {
	GetApplicationByID(ctx context.Context, id int64) (domain.Application, error)
	GetApplicationByName(ctx context.Context, name string) (domain.Application, error)

	// CreateApplication fails with ErrAlreadyExists on a duplicate name.
	CreateApplication(ctx context.Context, name string) (domain.Application, error)

	// DeleteApplication cascades to the application's roles and their grants.
	DeleteApplication(ctx context.Context, id int64) error

	ListApplications(ctx context.Context) ([]domain.Application, error)
}

type Roles interface {
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)

	// GetRoleByName looks up a role inside its owning application.
	GetRoleByName(ctx context.Context, applicationID int64, name string) (domain.Role, error)

	// CreateRole fails with ErrAlreadyExists when (application, name) is taken.
	CreateRole(ctx context.Context, applicationID int64, name string) (domain.Role, error)

	// DeleteRole cascades to user and group grants of the role.
	DeleteRole(ctx context.Context, id int64) error

	ListRoles(ctx context.Context, limit int, offset int64) ([]domain.Role, error)
	ListRolesForApplication(ctx context.Context, applicationID int64) ([]domain.Role, error)
}

type Groups interface {
	GetGroupByID(ctx context.Context, id int64) (domain.Group, error)
	GetGroupByName(ctx context.Context, name string) (domain.Group, error)
	CreateGroup(ctx context.Context, name string) (domain.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	ListGroups(ctx context.Context, limit int, offset int64) ([]domain.Group, error)
}

// Permissions covers role grants in all three relations: user->role,
// group->role, and user->group, plus the resolution queries the auth core
// runs on every login and refresh.
type Permissions interface {
	GrantUserRole(ctx context.Context, userID, roleID int64) error
	RevokeUserRole(ctx context.Context, userID, roleID int64) error

	GrantGroupRole(ctx context.Context, groupID, roleID int64) error
	RevokeGroupRole(ctx context.Context, groupID, roleID int64) error

	AddUserToGroup(ctx context.Context, userID, groupID int64) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID int64) error

	// GetUserRoles returns roles granted directly to the user, joined with
	// their owning applications.
	GetUserRoles(ctx context.Context, userID int64) ([]domain.RoleGrant, error)

	// GetUserGroupRoles returns roles the user inherits through group
	// membership.
	GetUserGroupRoles(ctx context.Context, userID int64) ([]domain.RoleGrant, error)

	// GetGroupRoles returns roles granted to a group.
	GetGroupRoles(ctx context.Context, groupID int64) ([]domain.RoleGrant, error)
}

type AuthSettings interface {
	// GetByUsername returns the settings row for a user or ErrNotFound when
	// none exists. Callers fall back to system defaults.
	GetByUsername(ctx context.Context, username string) (domain.UserAuthSettings, error)

	GetByUserID(ctx context.Context, userID int64) (domain.UserAuthSettings, error)

	// UpsertSettings creates or replaces the row for settings.UserID and
	// returns it with the ID set.
	UpsertSettings(ctx context.Context, settings domain.UserAuthSettings) (domain.UserAuthSettings, error)
}
