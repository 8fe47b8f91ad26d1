package users

import (
	"context"
	"time"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// Repo defines persistence operations for users.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	// UpdateTokens overwrites the token triplet (last write wins; see the
	// concurrency contract between request paths and the sweeper).
	UpdateTokens(ctx context.Context, userID string, tokens TokenPair) error
	// ListTokenRefreshCandidates returns users whose access token expires at
	// or before threshold and who still hold a refresh token.
	ListTokenRefreshCandidates(ctx context.Context, threshold time.Time) ([]User, error)
}
