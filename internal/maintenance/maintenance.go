// Package maintenance runs periodic store housekeeping: WAL checkpointing
// keeps the write-ahead log from growing without bound on long-lived
// deployments, and PRAGMA optimize refreshes the query planner statistics.
package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/timeclock/internal/logfields"
	"git.home.luguber.info/inful/timeclock/internal/store"
)

// Scheduler wraps gocron for the periodic housekeeping job.
type Scheduler struct {
	scheduler gocron.Scheduler
	mgr       *store.Manager
	interval  time.Duration
}

// NewScheduler creates a scheduler that runs housekeeping every interval.
func NewScheduler(mgr *store.Manager, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("maintenance interval must be positive, got %s", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, mgr: mgr, interval: interval}, nil
}

// Start registers the housekeeping job and begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.run(ctx) }),
		gocron.WithName("store-maintenance"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	slog.Info("Starting maintenance scheduler", slog.Duration("interval", s.interval))
	s.scheduler.Start()
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping maintenance scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) run(ctx context.Context) {
	start := time.Now()
	if err := s.RunOnce(ctx); err != nil {
		slog.Error("Store maintenance failed", logfields.Error(err))
		return
	}
	slog.Debug("Store maintenance complete",
		logfields.Op("maintenance"),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// RunOnce executes one housekeeping pass.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.mgr.With(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return fmt.Errorf("wal checkpoint: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
			return fmt.Errorf("optimize: %w", err)
		}
		return nil
	})
}
