package cvs

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo for tests and local runs without Postgres.
type MemoryRepo struct {
	mu  sync.RWMutex
	cvs map[string]CV
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{cvs: make(map[string]CV)}
}

func (r *MemoryRepo) Create(_ context.Context, cv CV) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cvs[cv.ID] = cv
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, cvID string) (CV, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cv, ok := r.cvs[cvID]
	if !ok {
		return CV{}, ErrNotFound
	}
	return cv, nil
}

func (r *MemoryRepo) Update(_ context.Context, cv CV) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cvs[cv.ID]; !ok {
		return ErrNotFound
	}
	r.cvs[cv.ID] = cv
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, cvID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cvs[cvID]; !ok {
		return ErrNotFound
	}
	delete(r.cvs, cvID)
	return nil
}
