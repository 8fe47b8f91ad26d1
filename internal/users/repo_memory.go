package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[user.ID]
	if ok {
		if user.AccessToken == "" {
			user.AccessToken = existing.AccessToken
		}
		if user.RefreshToken == "" {
			user.RefreshToken = existing.RefreshToken
		}
		if user.TokenExpiry == nil {
			user.TokenExpiry = existing.TokenExpiry
		}
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = time.Now().UTC()
	r.data[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) UpdateTokens(ctx context.Context, userID string, tokens TokenPair) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	user.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		user.RefreshToken = tokens.RefreshToken
	}
	expiry := tokens.Expiry
	user.TokenExpiry = &expiry
	user.UpdatedAt = time.Now().UTC()
	r.data[userID] = user
	return nil
}

func (r *MemoryRepo) ListTokenRefreshCandidates(ctx context.Context, threshold time.Time) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []User
	for _, user := range r.data {
		if user.TokenExpiry == nil || user.RefreshToken == "" {
			continue
		}
		if !user.TokenExpiry.After(threshold) {
			out = append(out, user)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
