package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/shared/workerpool"
	"jobassist-backend/internal/users"
)

// Sweeper periodically refreshes access tokens that are about to expire so
// interactive sends rarely pay the refresh round-trip. One user's failed
// refresh never blocks the rest of the sweep.
type Sweeper struct {
	Users       *users.Service
	Credentials *CredentialManager
	Interval    time.Duration
	Horizon     time.Duration

	cron *cron.Cron
	pool *workerpool.Pool
	now  func() time.Time
}

func NewSweeper(userSvc *users.Service, credentials *CredentialManager, interval, horizon time.Duration, pool *workerpool.Pool) *Sweeper {
	return &Sweeper{
		Users:       userSvc,
		Credentials: credentials,
		Interval:    interval,
		Horizon:     horizon,
		pool:        pool,
		now:         time.Now,
	}
}

// Start schedules the sweep. The first run happens after one interval.
func (s *Sweeper) Start() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	spec := fmt.Sprintf("@every %s", s.Interval)
	if _, err := c.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("schedule token sweep: %w", err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts scheduling and waits for the in-flight sweep, then drains the
// refresh pool.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// Sweep refreshes every user whose access token expires within the horizon.
func (s *Sweeper) Sweep(ctx context.Context) {
	threshold := s.now().Add(s.Horizon)
	candidates, err := s.Users.ExpiringBefore(ctx, threshold)
	if err != nil {
		telemetry.Error("mail.sweep.list_failed", map[string]any{"err": err.Error()})
		return
	}
	if len(candidates) == 0 {
		return
	}

	telemetry.Info("mail.sweep.start", map[string]any{
		"candidates": len(candidates),
		"threshold":  threshold.UTC().Format(time.RFC3339),
	})

	refreshed := 0
	failed := 0
	done := make(chan bool, len(candidates))
	for _, user := range candidates {
		user := user
		err := s.pool.Submit(ctx, func() {
			_, err := s.Credentials.Refresh(ctx, user)
			if err != nil {
				telemetry.Warn("mail.sweep.refresh_failed", map[string]any{
					"user_id": user.ID,
					"err":     err.Error(),
				})
			}
			done <- err == nil
		})
		if err != nil {
			telemetry.Warn("mail.sweep.submit_failed", map[string]any{
				"user_id": user.ID,
				"err":     err.Error(),
			})
			done <- false
		}
	}
	for range candidates {
		if <-done {
			refreshed++
		} else {
			failed++
		}
	}

	telemetry.Info("mail.sweep.complete", map[string]any{
		"refreshed": refreshed,
		"failed":    failed,
	})
}
