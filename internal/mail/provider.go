package mail

import (
	"context"
	"errors"

	"jobassist-backend/internal/users"
)

var (
	// ErrUnsupportedProvider means no registered provider handles the user's
	// auth method.
	ErrUnsupportedProvider = errors.New("no mail provider for auth method")
	// ErrNotSendReady means the matched provider cannot send for this user,
	// typically because OAuth tokens are missing.
	ErrNotSendReady = errors.New("user is not send-ready")
	// ErrDeliveryFailed wraps provider-side send failures.
	ErrDeliveryFailed = errors.New("mail delivery failed")
	// ErrTokenRefreshed means the provider rejected the stored access token,
	// a reactive refresh succeeded, and the caller should retry the send.
	ErrTokenRefreshed = errors.New("access token refreshed, retry the send")
)

// Provider sends email on behalf of a user through one upstream service.
type Provider interface {
	// SupportsAuthMethod reports whether this provider serves users who
	// signed in with the given method.
	SupportsAuthMethod(method users.AuthMethod) bool
	// CanSend reports whether this specific user holds everything the
	// provider needs to send right now.
	CanSend(user users.User) bool
	Send(ctx context.Context, user users.User, msg Message) error
}

// Gateway dispatches a message to the first provider that supports the user's
// auth method.
type Gateway struct {
	providers []Provider
}

func NewGateway(providers ...Provider) *Gateway {
	return &Gateway{providers: providers}
}

// CanSend reports whether some provider could send for this user right now.
func (g *Gateway) CanSend(user users.User) bool {
	for _, p := range g.providers {
		if p.SupportsAuthMethod(user.AuthMethod) {
			return p.CanSend(user)
		}
	}
	return false
}

func (g *Gateway) Send(ctx context.Context, user users.User, msg Message) error {
	for _, p := range g.providers {
		if !p.SupportsAuthMethod(user.AuthMethod) {
			continue
		}
		if !p.CanSend(user) {
			return ErrNotSendReady
		}
		return p.Send(ctx, user, msg)
	}
	return ErrUnsupportedProvider
}
