package users

import "time"

// AuthMethod distinguishes how a user signs in; it also selects the email
// provider capable of sending on their behalf.
type AuthMethod string

const (
	AuthLocal  AuthMethod = "local"
	AuthGoogle AuthMethod = "google"
)

// User is an account row. The token triplet belongs to the user's OAuth
// provider and is mutated by login, proactive/reactive refresh, and the sweeper.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	AuthMethod   AuthMethod `json:"authMethod"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenExpiry  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TokenPair is the refreshed triplet written back onto the user row.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}
