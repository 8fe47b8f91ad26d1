package applications

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("application not found")
	ErrInvalidStatus = errors.New("invalid application status")
)

// Repo defines persistence operations for job applications.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, appID string) (Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	UpdateStatus(ctx context.Context, appID string, status Status) error
}
