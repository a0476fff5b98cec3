package service

import (
	"context"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
)

// ApplicationService manages applications, the namespaces roles live in.
type ApplicationService struct {
	Store store.Store
}

func (s *ApplicationService) CreateApplication(ctx context.Context, name string) (domain.Application, error) {
	if err := validateName(name); err != nil {
		return domain.Application{}, err
	}
	return s.Store.Applications().CreateApplication(ctx, name)
}

func (s *ApplicationService) GetApplicationByID(ctx context.Context, id int64) (domain.Application, error) {
	return s.Store.Applications().GetApplicationByID(ctx, id)
}

func (s *ApplicationService) GetApplicationByName(ctx context.Context, name string) (domain.Application, error) {
	return s.Store.Applications().GetApplicationByName(ctx, name)
}

func (s *ApplicationService) ListApplications(ctx context.Context) ([]domain.Application, error) {
	return s.Store.Applications().ListApplications(ctx)
}

// DeleteApplication removes the application, its roles, and every grant of
// those roles.
func (s *ApplicationService) DeleteApplication(ctx context.Context, id int64) error {
	return s.Store.Applications().DeleteApplication(ctx, id)
}

// ListRoles lists the roles owned by an application.
func (s *ApplicationService) ListRoles(ctx context.Context, applicationID int64) ([]domain.Role, error) {
	return s.Store.Roles().ListRolesForApplication(ctx, applicationID)
}
