package profiles

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Profile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Profile)}
}

func (r *MemoryRepo) Create(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.data[profile.ID] = profile
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, profileID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.data[profileID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Profile
	for _, profile := range r.data {
		if profile.UserID == userID {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[profile.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = profile.Title
	existing.Summary = profile.Summary
	existing.Skills = profile.Skills
	existing.UpdatedAt = time.Now().UTC()
	r.data[profile.ID] = existing
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[profileID]; !ok {
		return ErrNotFound
	}
	delete(r.data, profileID)
	return nil
}

func (r *MemoryRepo) SetCV(ctx context.Context, profileID string, cvID *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.data[profileID]
	if !ok {
		return ErrNotFound
	}
	if cvID == nil {
		profile.CVID = nil
	} else {
		id := *cvID
		profile.CVID = &id
	}
	profile.UpdatedAt = time.Now().UTC()
	r.data[profileID] = profile
	return nil
}

func (r *MemoryRepo) ListByCVID(ctx context.Context, cvID string) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Profile
	for _, profile := range r.data {
		if profile.CVID != nil && *profile.CVID == cvID {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ClearCVRefs(ctx context.Context, cvID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	detached := 0
	for id, profile := range r.data {
		if profile.CVID != nil && *profile.CVID == cvID {
			profile.CVID = nil
			profile.UpdatedAt = time.Now().UTC()
			r.data[id] = profile
			detached++
		}
	}
	return detached, nil
}

var _ Repo = (*MemoryRepo)(nil)
