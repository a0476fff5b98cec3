package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/pkg/cryptox"
	"github.com/lockhaven/identity/pkg/slogx"
)

var (
	ErrUsernameInvalid = errors.New("username must be 1-64 characters with no whitespace")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")
)

// UserService manages user accounts. Password hashing happens here; the store
// only ever sees hashes.
type UserService struct {
	Store store.Store
}

// CreateUser validates the credentials, hashes the password, and inserts the
// user. A taken username fails with store.ErrAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (domain.User, error) {
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.Store.Users().CreateUser(ctx, username, hash)
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

func (s *UserService) ListUsers(ctx context.Context, limit int, offset int64) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.Store.Users().ListUsers(ctx, limit, offset)
}

// DeleteUser removes the user; grants, group memberships, and auth settings
// go with it.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("user deleted", slog.Int64("user_id", userID))
	return nil
}

// ChangePassword sets a new password after verifying the current one.
// A wrong current password fails with ErrInvalidCredentials.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := cryptox.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

func validateUsername(username string) error {
	if username == "" || len(username) > 64 || strings.ContainsAny(username, " \t\r\n") {
		return ErrUsernameInvalid
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooWeak
	}
	return nil
}
