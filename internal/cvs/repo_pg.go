package cvs

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, cv CV) error {
	const query = `
INSERT INTO cvs (id, file_name, url, content_type, size_bytes, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		cv.ID,
		cv.FileName,
		cv.URL,
		cv.ContentType,
		cv.SizeBytes,
		cv.UploadedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, cvID string) (CV, error) {
	const query = `
SELECT id, file_name, url, content_type, size_bytes, uploaded_at
FROM cvs
WHERE id = $1
LIMIT 1`
	var cv CV
	err := r.DB.QueryRowContext(ctx, query, cvID).Scan(
		&cv.ID,
		&cv.FileName,
		&cv.URL,
		&cv.ContentType,
		&cv.SizeBytes,
		&cv.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return CV{}, ErrNotFound
	}
	if err != nil {
		return CV{}, err
	}
	return cv, nil
}

func (r *PGRepo) Update(ctx context.Context, cv CV) error {
	const query = `
UPDATE cvs
SET file_name = $1, url = $2, content_type = $3, size_bytes = $4, uploaded_at = $5
WHERE id = $6`
	res, err := r.DB.ExecContext(ctx, query,
		cv.FileName,
		cv.URL,
		cv.ContentType,
		cv.SizeBytes,
		cv.UploadedAt,
		cv.ID,
	)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, cvID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cvs WHERE id = $1`, cvID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
