package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/shared/workerpool"
)

func TestSweepRefreshesExpiringUsers(t *testing.T) {
	ts := newTokenServer(t)
	mgr, repo := newTestManager(t, ts)

	seedUser(t, repo, "soon-1", time.Now().Add(5*time.Minute))
	seedUser(t, repo, "soon-2", time.Now().Add(10*time.Minute))
	seedUser(t, repo, "later", time.Now().Add(2*time.Hour))

	pool := workerpool.New(4, 16)
	sweeper := NewSweeper(mgr.Users, mgr, time.Minute, 15*time.Minute, pool)
	sweeper.Sweep(context.Background())
	pool.Close()

	for _, id := range []string{"soon-1", "soon-2"} {
		user, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "new-access-refresh-"+id, user.AccessToken, "user %s refreshed", id)
	}
	later, err := repo.GetByID(context.Background(), "later")
	require.NoError(t, err)
	assert.Equal(t, "old-access", later.AccessToken, "user outside the horizon untouched")
}

func TestSweepIsolatesPerUserFailures(t *testing.T) {
	ts := newTokenServer(t)
	ts.failFor["refresh-revoked"] = true
	mgr, repo := newTestManager(t, ts)

	seedUser(t, repo, "revoked", time.Now().Add(time.Minute))
	seedUser(t, repo, "healthy", time.Now().Add(time.Minute))

	pool := workerpool.New(2, 8)
	sweeper := NewSweeper(mgr.Users, mgr, time.Minute, 15*time.Minute, pool)
	sweeper.Sweep(context.Background())
	pool.Close()

	healthy, err := repo.GetByID(context.Background(), "healthy")
	require.NoError(t, err)
	assert.Equal(t, "new-access-refresh-healthy", healthy.AccessToken)

	revoked, err := repo.GetByID(context.Background(), "revoked")
	require.NoError(t, err)
	assert.Equal(t, "old-access", revoked.AccessToken, "failed refresh leaves the triplet alone")
}

func TestSweepNoCandidatesNoCalls(t *testing.T) {
	ts := newTokenServer(t)
	mgr, repo := newTestManager(t, ts)
	seedUser(t, repo, "later", time.Now().Add(2*time.Hour))

	pool := workerpool.New(1, 4)
	sweeper := NewSweeper(mgr.Users, mgr, time.Minute, 15*time.Minute, pool)
	sweeper.Sweep(context.Background())
	pool.Close()

	assert.Zero(t, ts.callCount())
}
