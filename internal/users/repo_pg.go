package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, full_name, auth_method, access_token, refresh_token, token_expiry, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  auth_method = EXCLUDED.auth_method,
  access_token = COALESCE(EXCLUDED.access_token, users.access_token),
  refresh_token = COALESCE(EXCLUDED.refresh_token, users.refresh_token),
  token_expiry = COALESCE(EXCLUDED.token_expiry, users.token_expiry),
  updated_at = now()`
	var expiry any
	if user.TokenExpiry != nil {
		expiry = *user.TokenExpiry
	}
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		nullableString(user.FullName),
		string(user.AuthMethod),
		nullableString(user.AccessToken),
		nullableString(user.RefreshToken),
		expiry,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, auth_method, access_token, refresh_token, token_expiry, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) UpdateTokens(ctx context.Context, userID string, tokens TokenPair) error {
	const query = `
UPDATE users
SET access_token = $1, refresh_token = COALESCE($2, refresh_token), token_expiry = $3, updated_at = now()
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query,
		nullableString(tokens.AccessToken),
		nullableString(tokens.RefreshToken),
		tokens.Expiry,
		userID,
	)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListTokenRefreshCandidates(ctx context.Context, threshold time.Time) ([]User, error) {
	const query = `
SELECT id, email, full_name, auth_method, access_token, refresh_token, token_expiry, created_at, updated_at
FROM users
WHERE token_expiry IS NOT NULL
  AND token_expiry <= $1
  AND refresh_token IS NOT NULL`
	rows, err := r.DB.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (User, error) {
	var user User
	var fullName sql.NullString
	var authMethod string
	var accessToken sql.NullString
	var refreshToken sql.NullString
	var tokenExpiry sql.NullTime
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Email,
		&fullName,
		&authMethod,
		&accessToken,
		&refreshToken,
		&tokenExpiry,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if fullName.Valid {
		user.FullName = fullName.String
	}
	user.AuthMethod = AuthMethod(authMethod)
	if accessToken.Valid {
		user.AccessToken = accessToken.String
	}
	if refreshToken.Valid {
		user.RefreshToken = refreshToken.String
	}
	if tokenExpiry.Valid {
		expiry := tokenExpiry.Time
		user.TokenExpiry = &expiry
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
