package service

import (
	"context"
	"log/slog"

	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/pkg/cryptox"
	"github.com/lockhaven/identity/pkg/slogx"
)

const (
	// BootstrapApplication owns the server's own administrative roles.
	BootstrapApplication = "identity"

	// BootstrapAdminRole is required to call the administrative endpoints.
	BootstrapAdminRole = "users-admin"

	// BootstrapAdminUsername is the first account, created on an empty store.
	BootstrapAdminUsername = "admin"
)

// BootstrapService seeds an empty store with the identity application, the
// users-admin role, and an admin account holding it. Without this no one
// could ever call the administrative API of a fresh deployment.
type BootstrapService struct {
	Store store.Store

	// AdminPassword, when set, is used for the admin account instead of a
	// generated one. Generated passwords are logged exactly once.
	AdminPassword string
}

// EnsureBootstrapped is idempotent: it does nothing unless the users table is
// empty.
func (s *BootstrapService) EnsureBootstrapped(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	password := s.AdminPassword
	generated := false
	if password == "" {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return err
		}
		generated = true
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		app, err := tx.Applications().CreateApplication(ctx, BootstrapApplication)
		if err != nil {
			return err
		}
		role, err := tx.Roles().CreateRole(ctx, app.ID, BootstrapAdminRole)
		if err != nil {
			return err
		}
		user, err := tx.Users().CreateUser(ctx, BootstrapAdminUsername, hash)
		if err != nil {
			return err
		}
		return tx.Permissions().GrantUserRole(ctx, user.ID, role.ID)
	})
	if err != nil {
		return err
	}

	if generated {
		// The only place this password ever appears. Change it after
		// first login.
		l.Warn("created admin account with generated password",
			slog.String("username", BootstrapAdminUsername),
			slog.String("password", password),
		)
	} else {
		l.Info("created admin account", slog.String("username", BootstrapAdminUsername))
	}
	return nil
}
