package profiles

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for profiles.
type Repo interface {
	Create(ctx context.Context, profile Profile) error
	GetByID(ctx context.Context, profileID string) (Profile, error)
	ListByUser(ctx context.Context, userID string) ([]Profile, error)
	Update(ctx context.Context, profile Profile) error
	Delete(ctx context.Context, profileID string) error
	// SetCV repoints a profile's CV reference; a nil cvID detaches it.
	SetCV(ctx context.Context, profileID string, cvID *string) error
	// ListByCVID returns every profile currently referencing the CV.
	ListByCVID(ctx context.Context, cvID string) ([]Profile, error)
	// ClearCVRefs detaches the CV from all referencing profiles in bulk,
	// returning how many were detached.
	ClearCVRefs(ctx context.Context, cvID string) (int, error)
}
