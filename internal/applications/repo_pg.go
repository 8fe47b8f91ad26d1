package applications

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO job_applications (id, user_id, profile_id, cv_id, company, job_email, job_title, subject, status, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.ProfileID,
		app.CVID,
		app.Company,
		app.JobEmail,
		app.JobTitle,
		app.Subject,
		string(app.Status),
		app.SentAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, appID string) (Application, error) {
	const query = selectApplication + ` WHERE id = $1 LIMIT 1`
	return scanApplication(r.DB.QueryRowContext(ctx, query, appID))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	const query = selectApplication + ` WHERE user_id = $1 ORDER BY sent_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, appID string, status Status) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE job_applications SET status = $1 WHERE id = $2`, string(status), appID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

const selectApplication = `
SELECT id, user_id, profile_id, cv_id, company, job_email, job_title, subject, status, sent_at
FROM job_applications`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var status string
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.ProfileID,
		&app.CVID,
		&app.Company,
		&app.JobEmail,
		&app.JobTitle,
		&app.Subject,
		&status,
		&app.SentAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, err
	}
	app.Status = Status(status)
	return app, nil
}
