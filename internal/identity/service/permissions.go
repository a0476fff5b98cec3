// Package service holds the business logic of the identity server. Services
// are thin structs over the store; handlers own HTTP concerns, services own
// semantics.
package service

import (
	"context"
	"errors"
	"sort"

	"github.com/lockhaven/identity/internal/identity/domain"
	"github.com/lockhaven/identity/internal/identity/store"
)

// PermissionService resolves a user's effective roles and owns all grant
// mutations: user->role, group->role, and user->group.
type PermissionService struct {
	Store store.Store
}

// EffectiveRoles returns the union of the user's direct role grants and the
// roles inherited through group membership, deduplicated by role identity and
// ordered by role ID. A role granted both directly and through a group
// appears once.
func (s *PermissionService) EffectiveRoles(ctx context.Context, userID int64) ([]domain.RoleGrant, error) {
	direct, err := s.Store.Permissions().GetUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	inherited, err := s.Store.Permissions().GetUserGroupRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(direct)+len(inherited))
	merged := make([]domain.RoleGrant, 0, len(direct)+len(inherited))
	for _, g := range append(direct, inherited...) {
		if _, ok := seen[g.RoleID]; ok {
			continue
		}
		seen[g.RoleID] = struct{}{}
		merged = append(merged, g)
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].RoleID < merged[j].RoleID })
	return merged, nil
}

// GrantUserRole grants a role directly to a user. Granting an already-held
// role is a no-op.
func (s *PermissionService) GrantUserRole(ctx context.Context, userID, roleID int64) error {
	err := s.Store.Permissions().GrantUserRole(ctx, userID, roleID)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (s *PermissionService) RevokeUserRole(ctx context.Context, userID, roleID int64) error {
	return s.Store.Permissions().RevokeUserRole(ctx, userID, roleID)
}

// GrantGroupRole grants a role to a group, extending it to all members.
func (s *PermissionService) GrantGroupRole(ctx context.Context, groupID, roleID int64) error {
	err := s.Store.Permissions().GrantGroupRole(ctx, groupID, roleID)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (s *PermissionService) RevokeGroupRole(ctx context.Context, groupID, roleID int64) error {
	return s.Store.Permissions().RevokeGroupRole(ctx, groupID, roleID)
}

// AddUserToGroup adds a user to a group. Adding an existing member is a
// no-op.
func (s *PermissionService) AddUserToGroup(ctx context.Context, userID, groupID int64) error {
	err := s.Store.Permissions().AddUserToGroup(ctx, userID, groupID)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (s *PermissionService) RemoveUserFromGroup(ctx context.Context, userID, groupID int64) error {
	return s.Store.Permissions().RemoveUserFromGroup(ctx, userID, groupID)
}

// GroupRoles lists the roles granted to a group.
func (s *PermissionService) GroupRoles(ctx context.Context, groupID int64) ([]domain.RoleGrant, error) {
	return s.Store.Permissions().GetGroupRoles(ctx, groupID)
}
