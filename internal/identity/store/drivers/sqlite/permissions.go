package sqlite

import (
	"context"
	"database/sql"

	"github.com/lockhaven/identity/internal/identity/domain"
)

type permissionsRepo struct {
	q querier
}

func (r *permissionsRepo) GrantUserRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID)
	return mapConstraint(err)
}

func (r *permissionsRepo) RevokeUserRole(ctx context.Context, userID, roleID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *permissionsRepo) GrantGroupRole(ctx context.Context, groupID, roleID int64) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO group_roles (group_id, role_id) VALUES (?, ?)`, groupID, roleID)
	return mapConstraint(err)
}

func (r *permissionsRepo) RevokeGroupRole(ctx context.Context, groupID, roleID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM group_roles WHERE group_id = ? AND role_id = ?`, groupID, roleID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *permissionsRepo) AddUserToGroup(ctx context.Context, userID, groupID int64) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_groups (user_id, group_id) VALUES (?, ?)`, userID, groupID)
	return mapConstraint(err)
}

func (r *permissionsRepo) RemoveUserFromGroup(ctx context.Context, userID, groupID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM user_groups WHERE user_id = ? AND group_id = ?`, userID, groupID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *permissionsRepo) GetUserRoles(ctx context.Context, userID int64) ([]domain.RoleGrant, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.application_id, a.name, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		JOIN applications a ON a.id = r.application_id
		WHERE ur.user_id = ?
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoleGrants(rows)
}

func (r *permissionsRepo) GetUserGroupRoles(ctx context.Context, userID int64) ([]domain.RoleGrant, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT DISTINCT r.id, r.application_id, a.name, r.name
		FROM user_groups ug
		JOIN group_roles gr ON gr.group_id = ug.group_id
		JOIN roles r ON r.id = gr.role_id
		JOIN applications a ON a.id = r.application_id
		WHERE ug.user_id = ?
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoleGrants(rows)
}

func (r *permissionsRepo) GetGroupRoles(ctx context.Context, groupID int64) ([]domain.RoleGrant, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.application_id, a.name, r.name
		FROM group_roles gr
		JOIN roles r ON r.id = gr.role_id
		JOIN applications a ON a.id = r.application_id
		WHERE gr.group_id = ?
		ORDER BY r.id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoleGrants(rows)
}

func collectRoleGrants(rows *sql.Rows) ([]domain.RoleGrant, error) {
	var grants []domain.RoleGrant
	for rows.Next() {
		var g domain.RoleGrant
		if err := rows.Scan(&g.RoleID, &g.ApplicationID, &g.Application, &g.Role); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
