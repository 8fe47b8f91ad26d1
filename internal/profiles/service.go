package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned when a profile is not owned by the caller.
var ErrUnauthorized = errors.New("profile not owned by user")

// Service contains business logic for profiles.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) Create(ctx context.Context, userID, title, summary string, skills []string) (Profile, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(title) == "" {
		return Profile{}, ErrInvalidInput
	}
	profile := Profile{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Summary:   strings.TrimSpace(summary),
		Skills:    normalizeSkills(skills),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// GetOwned loads a profile and enforces ownership.
func (s *Service) GetOwned(ctx context.Context, userID, profileID string) (Profile, error) {
	profile, err := s.Repo.GetByID(ctx, profileID)
	if err != nil {
		return Profile{}, err
	}
	if profile.UserID != userID {
		return Profile{}, ErrUnauthorized
	}
	return profile, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Profile, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, profileID, title, summary string, skills []string) (Profile, error) {
	profile, err := s.GetOwned(ctx, userID, profileID)
	if err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(title) != "" {
		profile.Title = strings.TrimSpace(title)
	}
	profile.Summary = strings.TrimSpace(summary)
	profile.Skills = normalizeSkills(skills)
	if err := s.Repo.Update(ctx, profile); err != nil {
		return Profile{}, err
	}
	return s.Repo.GetByID(ctx, profileID)
}

func (s *Service) Delete(ctx context.Context, userID, profileID string) error {
	if _, err := s.GetOwned(ctx, userID, profileID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, profileID)
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
