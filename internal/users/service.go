package users

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth persists the user identity (and any OAuth tokens captured at
// login) so the send pipeline and sweeper can find them later.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	if user.AuthMethod == "" {
		user.AuthMethod = AuthLocal
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// SaveTokens writes a refreshed token triplet back onto the user row.
func (s *Service) SaveTokens(ctx context.Context, userID string, tokens TokenPair) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	return s.Repo.UpdateTokens(ctx, userID, tokens)
}

// ExpiringBefore lists users whose access token expires at or before threshold
// and who can still be refreshed.
func (s *Service) ExpiringBefore(ctx context.Context, threshold time.Time) ([]User, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	return s.Repo.ListTokenRefreshCandidates(ctx, threshold)
}
