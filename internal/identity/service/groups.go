package service

import (
	"context"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
)

// GroupService manages groups. Role grants to groups and group membership
// live on PermissionService.
type GroupService struct {
	Store store.Store
}

func (s *GroupService) CreateGroup(ctx context.Context, name string) (domain.Group, error) {
	if err := validateName(name); err != nil {
		return domain.Group{}, err
	}
	return s.Store.Groups().CreateGroup(ctx, name)
}

func (s *GroupService) GetGroupByID(ctx context.Context, id int64) (domain.Group, error) {
	return s.Store.Groups().GetGroupByID(ctx, id)
}

func (s *GroupService) GetGroupByName(ctx context.Context, name string) (domain.Group, error) {
	return s.Store.Groups().GetGroupByName(ctx, name)
}

func (s *GroupService) ListGroups(ctx context.Context, limit int, offset int64) ([]domain.Group, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.Store.Groups().ListGroups(ctx, limit, offset)
}

// DeleteGroup removes the group; members lose the group's roles immediately.
func (s *GroupService) DeleteGroup(ctx context.Context, id int64) error {
	return s.Store.Groups().DeleteGroup(ctx, id)
}
