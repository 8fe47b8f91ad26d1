package applications

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Application
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Application)}
}

func (r *MemoryRepo) Create(_ context.Context, app Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[app.ID] = app
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, appID string) (Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.data[appID]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *MemoryRepo) ListByUser(_ context.Context, userID string) ([]Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for _, app := range r.data {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(_ context.Context, appID string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.data[appID]
	if !ok {
		return ErrNotFound
	}
	app.Status = status
	r.data[appID] = app
	return nil
}
