package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"jobassist-backend/internal/users"
)

type tokenServer struct {
	*httptest.Server
	mu      sync.Mutex
	rotate  bool
	failFor map[string]bool
	calls   int
}

func (ts *tokenServer) callCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.calls
}

// newTokenServer fakes an OAuth token endpoint. Refresh tokens listed in
// failFor are rejected with invalid_grant.
func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{failFor: make(map[string]bool)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		ts.mu.Lock()
		ts.calls++
		rotate := ts.rotate
		refreshToken := r.Form.Get("refresh_token")
		fail := ts.failFor[refreshToken]
		ts.mu.Unlock()
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		resp := map[string]any{
			"access_token": "new-access-" + refreshToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if rotate {
			resp["refresh_token"] = "rotated-" + refreshToken
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestManager(t *testing.T, ts *tokenServer) (*CredentialManager, *users.MemoryRepo) {
	t.Helper()
	repo := users.NewMemoryRepo()
	cfg := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: ts.URL},
	}
	mgr := NewCredentialManager(users.NewService(repo), cfg, 300*time.Second, 5*time.Second)
	return mgr, repo
}

func seedUser(t *testing.T, repo *users.MemoryRepo, id string, expiry time.Time) users.User {
	t.Helper()
	user := users.User{
		ID:           id,
		Email:        id + "@example.com",
		AuthMethod:   users.AuthGoogle,
		AccessToken:  "old-access",
		RefreshToken: "refresh-" + id,
		TokenExpiry:  &expiry,
	}
	require.NoError(t, repo.Upsert(context.Background(), user))
	return user
}

func TestRefreshPersistsTriplet(t *testing.T) {
	ts := newTokenServer(t)
	mgr, repo := newTestManager(t, ts)
	user := seedUser(t, repo, "u1", time.Now().Add(-time.Minute))

	refreshed, err := mgr.Refresh(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "new-access-refresh-u1", refreshed.AccessToken)
	assert.Equal(t, "refresh-u1", refreshed.RefreshToken, "non-rotated refresh token is kept")

	stored, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "new-access-refresh-u1", stored.AccessToken)
	assert.Equal(t, "refresh-u1", stored.RefreshToken)
	require.NotNil(t, stored.TokenExpiry)
	assert.True(t, stored.TokenExpiry.After(time.Now().Add(30*time.Minute)))
}

func TestRefreshStoresRotatedRefreshToken(t *testing.T) {
	ts := newTokenServer(t)
	ts.rotate = true
	mgr, repo := newTestManager(t, ts)
	user := seedUser(t, repo, "u1", time.Now().Add(-time.Minute))

	refreshed, err := mgr.Refresh(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh-u1", refreshed.RefreshToken)

	stored, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh-u1", stored.RefreshToken)
}

func TestRefreshFailureLeavesStoredTokens(t *testing.T) {
	ts := newTokenServer(t)
	ts.failFor["refresh-u1"] = true
	mgr, repo := newTestManager(t, ts)
	user := seedUser(t, repo, "u1", time.Now().Add(-time.Minute))

	_, err := mgr.Refresh(context.Background(), user)
	require.ErrorIs(t, err, ErrTokenRefreshFailed)

	stored, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "old-access", stored.AccessToken)
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	ts := newTokenServer(t)
	mgr, _ := newTestManager(t, ts)

	_, err := mgr.Refresh(context.Background(), users.User{ID: "u1"})
	require.ErrorIs(t, err, ErrTokenRefreshFailed)
	assert.Zero(t, ts.callCount())
}

func TestCredentialRefreshesInsideMargin(t *testing.T) {
	ts := newTokenServer(t)
	mgr, repo := newTestManager(t, ts)
	// expires in 2 minutes, inside the 300s margin
	user := seedUser(t, repo, "u1", time.Now().Add(2*time.Minute))

	got := mgr.Credential(context.Background(), user)
	assert.Equal(t, "new-access-refresh-u1", got.AccessToken)
	assert.Equal(t, 1, ts.callCount())
}

func TestCredentialSkipsFreshToken(t *testing.T) {
	ts := newTokenServer(t)
	mgr, repo := newTestManager(t, ts)
	user := seedUser(t, repo, "u1", time.Now().Add(time.Hour))

	got := mgr.Credential(context.Background(), user)
	assert.Equal(t, "old-access", got.AccessToken)
	assert.Zero(t, ts.callCount())
}

func TestCredentialSwallowsProactiveFailure(t *testing.T) {
	ts := newTokenServer(t)
	ts.failFor["refresh-u1"] = true
	mgr, repo := newTestManager(t, ts)
	user := seedUser(t, repo, "u1", time.Now().Add(time.Minute))

	got := mgr.Credential(context.Background(), user)
	assert.Equal(t, "old-access", got.AccessToken, "stale token returned when proactive refresh fails")
}
