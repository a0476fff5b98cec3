package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
)

type rolesRepo struct {
	q querier
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, application_id, name, created_at FROM roles WHERE id = ?`, id)
	return scanRole(row)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, applicationID int64, name string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, application_id, name, created_at FROM roles WHERE application_id = ? AND name = ?`,
		applicationID, name)
	return scanRole(row)
}

func (r *rolesRepo) CreateRole(ctx context.Context, applicationID int64, name string) (domain.Role, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (application_id, name, created_at) VALUES (?, ?, ?)`,
		applicationID, name, now)
	if err != nil {
		return domain.Role{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Role{}, err
	}
	return domain.Role{ID: id, ApplicationID: applicationID, Name: name, CreatedAt: now}, nil
}

func (r *rolesRepo) DeleteRole(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *rolesRepo) ListRoles(ctx context.Context, limit int, offset int64) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, application_id, name, created_at FROM roles ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func (r *rolesRepo) ListRolesForApplication(ctx context.Context, applicationID int64) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, application_id, name, created_at FROM roles WHERE application_id = ? ORDER BY id`,
		applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func scanRole(row rowScanner) (domain.Role, error) {
	var role domain.Role
	if err := row.Scan(&role.ID, &role.ApplicationID, &role.Name, &role.CreatedAt); err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func collectRoles(rows *sql.Rows) ([]domain.Role, error) {
	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.ApplicationID, &role.Name, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
