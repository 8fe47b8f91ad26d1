package profiles

import "time"

// Profile is a named CV/skills bundle owned by one user, the unit of
// "apply with this resume". At most one CV is linked at a time.
type Profile struct {
	ID        string
	UserID    string
	Title     string
	Summary   string
	Skills    []string
	CVID      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
