package cvs

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("cv not found")
	ErrInvalidFile = errors.New("invalid file")
)

// Repo defines persistence operations for CV metadata rows.
type Repo interface {
	Create(ctx context.Context, cv CV) error
	GetByID(ctx context.Context, cvID string) (CV, error)
	Update(ctx context.Context, cv CV) error
	Delete(ctx context.Context, cvID string) error
}
