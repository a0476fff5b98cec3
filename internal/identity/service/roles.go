package service

import (
	"context"
	"errors"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
)

var ErrNameInvalid = errors.New("name must be 1-64 characters with no whitespace or colon")

// RoleService manages roles within their applications.
type RoleService struct {
	Store store.Store
}

// CreateRole creates a role in an application. The application must exist;
// (application, name) must be unique.
func (s *RoleService) CreateRole(ctx context.Context, applicationID int64, name string) (domain.Role, error) {
	if err := validateName(name); err != nil {
		return domain.Role{}, err
	}
	if _, err := s.Store.Applications().GetApplicationByID(ctx, applicationID); err != nil {
		return domain.Role{}, err
	}
	return s.Store.Roles().CreateRole(ctx, applicationID, name)
}

func (s *RoleService) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	return s.Store.Roles().GetRoleByID(ctx, id)
}

func (s *RoleService) ListRoles(ctx context.Context, limit int, offset int64) ([]domain.Role, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.Store.Roles().ListRoles(ctx, limit, offset)
}

// DeleteRole removes the role and every user and group grant of it.
func (s *RoleService) DeleteRole(ctx context.Context, id int64) error {
	return s.Store.Roles().DeleteRole(ctx, id)
}

// validateName guards application, role, and group names. Colons are
// excluded because "application:role" is the token wire form.
func validateName(name string) error {
	if name == "" || len(name) > 64 {
		return ErrNameInvalid
	}
	for _, r := range name {
		switch r {
		case ' ', '\t', '\r', '\n', ':':
			return ErrNameInvalid
		}
	}
	return nil
}
