package sqlite

import (
	"context"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
)

type groupsRepo struct {
	q querier
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id int64) (domain.Group, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM groups WHERE id = ?`, id)
	return scanGroup(row)
}

func (r *groupsRepo) GetGroupByName(ctx context.Context, name string) (domain.Group, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM groups WHERE name = ?`, name)
	return scanGroup(row)
}

func (r *groupsRepo) CreateGroup(ctx context.Context, name string) (domain.Group, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO groups (name, created_at) VALUES (?, ?)`, name, now)
	if err != nil {
		return domain.Group{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Group{}, err
	}
	return domain.Group{ID: id, Name: name, CreatedAt: now}, nil
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *groupsRepo) ListGroups(ctx context.Context, limit int, offset int64) ([]domain.Group, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, created_at FROM groups ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanGroup(row rowScanner) (domain.Group, error) {
	var g domain.Group
	if err := row.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return g, nil
}
