package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"jobassist-backend/internal/shared/metrics"
	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/users"
)

// ErrTokenRefreshFailed means the OAuth provider rejected or never answered a
// refresh attempt; the stored triplet is left untouched.
var ErrTokenRefreshFailed = errors.New("token refresh failed")

// DefaultRefreshMargin is how close to expiry an access token may get before
// the send path refreshes it up front instead of risking a mid-send rejection.
const DefaultRefreshMargin = 300 * time.Second

// CredentialManager hands out usable access tokens for a user, refreshing
// them against the OAuth provider when they are expired or about to expire.
type CredentialManager struct {
	Users       *users.Service
	OAuth       *oauth2.Config
	Margin      time.Duration
	HTTPTimeout time.Duration

	now func() time.Time
}

func NewCredentialManager(userSvc *users.Service, oauthCfg *oauth2.Config, margin, httpTimeout time.Duration) *CredentialManager {
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	return &CredentialManager{
		Users:       userSvc,
		OAuth:       oauthCfg,
		Margin:      margin,
		HTTPTimeout: httpTimeout,
		now:         time.Now,
	}
}

// Credential returns the user with a send-ready access token. A token inside
// the refresh margin is refreshed proactively; if that refresh fails the stale
// token is returned anyway and the provider's own retry path takes over.
func (m *CredentialManager) Credential(ctx context.Context, user users.User) users.User {
	if !m.needsRefresh(user) {
		return user
	}
	refreshed, err := m.Refresh(ctx, user)
	if err != nil {
		telemetry.Warn("mail.token.proactive_refresh_failed", map[string]any{
			"user_id": user.ID,
			"err":     err.Error(),
		})
		return user
	}
	return refreshed
}

// Refresh exchanges the user's refresh token for a new access token and
// persists the updated triplet. The provider does not always rotate the
// refresh token; the store keeps the old one when it doesn't.
func (m *CredentialManager) Refresh(ctx context.Context, user users.User) (users.User, error) {
	if user.RefreshToken == "" {
		return users.User{}, fmt.Errorf("%w: no refresh token on record", ErrTokenRefreshFailed)
	}

	if m.HTTPTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.HTTPTimeout)
		defer cancel()
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: m.HTTPTimeout})
	}

	source := m.OAuth.TokenSource(ctx, &oauth2.Token{RefreshToken: user.RefreshToken})
	token, err := source.Token()
	if err != nil {
		metrics.IncTokenRefreshFailed()
		return users.User{}, fmt.Errorf("%w: %v", ErrTokenRefreshFailed, err)
	}

	pair := users.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if err := m.Users.SaveTokens(ctx, user.ID, pair); err != nil {
		return users.User{}, fmt.Errorf("persist refreshed tokens: %w", err)
	}

	user.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		user.RefreshToken = token.RefreshToken
	}
	expiry := token.Expiry
	user.TokenExpiry = &expiry

	metrics.IncTokenRefresh()
	telemetry.Info("mail.token.refreshed", map[string]any{
		"user_id": user.ID,
		"expiry":  expiry.UTC().Format(time.RFC3339),
	})
	return user, nil
}

func (m *CredentialManager) needsRefresh(user users.User) bool {
	if user.RefreshToken == "" || user.TokenExpiry == nil {
		return false
	}
	return !m.now().Add(m.Margin).Before(*user.TokenExpiry)
}
