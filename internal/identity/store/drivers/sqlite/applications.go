package sqlite

import (
	"context"
	"time"

	"github.com/lockhaven/identity/internal/identity/domain"
)

type applicationsRepo struct {
	q querier
}

func (r *applicationsRepo) GetApplicationByID(ctx context.Context, id int64) (domain.Application, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM applications WHERE id = ?`, id)
	return scanApplication(row)
}

func (r *applicationsRepo) GetApplicationByName(ctx context.Context, name string) (domain.Application, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM applications WHERE name = ?`, name)
	return scanApplication(row)
}

func (r *applicationsRepo) CreateApplication(ctx context.Context, name string) (domain.Application, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO applications (name, created_at) VALUES (?, ?)`, name, now)
	if err != nil {
		return domain.Application{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Application{}, err
	}
	return domain.Application{ID: id, Name: name, CreatedAt: now}, nil
}

func (r *applicationsRepo) DeleteApplication(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *applicationsRepo) ListApplications(ctx context.Context) ([]domain.Application, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, created_at FROM applications ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var a domain.Application
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func scanApplication(row rowScanner) (domain.Application, error) {
	var a domain.Application
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return a, nil
}
