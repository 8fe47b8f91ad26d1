package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres. Skills are stored as a JSONB array.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, profile Profile) error {
	const query = `
INSERT INTO profiles (id, user_id, title, summary, skills, cv_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	skills, err := encodeSkills(profile.Skills)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Title,
		nullableString(profile.Summary),
		skills,
		nullableStringPtr(profile.CVID),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, profileID string) (Profile, error) {
	const query = `
SELECT id, user_id, title, summary, skills, cv_id, created_at, updated_at
FROM profiles
WHERE id = $1
LIMIT 1`
	return scanProfile(r.DB.QueryRowContext(ctx, query, profileID))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Profile, error) {
	const query = `
SELECT id, user_id, title, summary, skills, cv_id, created_at, updated_at
FROM profiles
WHERE user_id = $1
ORDER BY created_at DESC`
	return r.queryMany(ctx, query, userID)
}

func (r *PGRepo) Update(ctx context.Context, profile Profile) error {
	const query = `
UPDATE profiles
SET title = $1, summary = $2, skills = $3, updated_at = now()
WHERE id = $4`
	skills, err := encodeSkills(profile.Skills)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		profile.Title,
		nullableString(profile.Summary),
		skills,
		profile.ID,
	)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, profileID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, profileID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SetCV(ctx context.Context, profileID string, cvID *string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET cv_id = $1, updated_at = now() WHERE id = $2`,
		nullableStringPtr(cvID), profileID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListByCVID(ctx context.Context, cvID string) ([]Profile, error) {
	const query = `
SELECT id, user_id, title, summary, skills, cv_id, created_at, updated_at
FROM profiles
WHERE cv_id = $1`
	return r.queryMany(ctx, query, cvID)
}

func (r *PGRepo) ClearCVRefs(ctx context.Context, cvID string) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET cv_id = NULL, updated_at = now() WHERE cv_id = $1`, cvID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *PGRepo) queryMany(ctx context.Context, query string, arg any) ([]Profile, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, profile)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var profile Profile
	var summary sql.NullString
	var skillsRaw []byte
	var cvID sql.NullString
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Title,
		&summary,
		&skillsRaw,
		&cvID,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if summary.Valid {
		profile.Summary = summary.String
	}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &profile.Skills); err != nil {
			return Profile{}, err
		}
	}
	if cvID.Valid {
		id := cvID.String
		profile.CVID = &id
	}
	return profile, nil
}

func encodeSkills(skills []string) ([]byte, error) {
	if skills == nil {
		skills = []string{}
	}
	return json.Marshal(skills)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableStringPtr(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
