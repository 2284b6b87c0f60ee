// Package cron provides scheduled export runs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/lock"
)

// Job is one export run.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
	logger  *slog.Logger

	ctx context.Context
}

// NewScheduler creates a scheduler for job using a standard 5-field cron spec.
func NewScheduler(spec string, job Job, logger *slog.Logger) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))

	// Overlapping ticks inside this process are skipped; the lock file
	// covers other processes.
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:    c,
		spec:    spec,
		job:     job,
		timeout: 30 * time.Minute,
		logger:  logger,
		ctx:     context.Background(),
	}
}

// WithTimeout bounds each run.
func (s *Scheduler) WithTimeout(d time.Duration) *Scheduler {
	s.timeout = d
	return s
}

// Start registers the job and begins scheduling. Runs derive their context
// from ctx, so cancelling it stops an in-flight extraction.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	if _, err := s.cron.AddFunc(s.spec, s.runJob); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop stops scheduling; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// Next returns the next scheduled activation, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunNow triggers a run synchronously (for testing/admin).
func (s *Scheduler) RunNow() {
	s.runJob()
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	started := time.Now()
	s.logger.Info("starting scheduled export run")

	err := s.job(ctx)
	switch {
	case err == nil:
		s.logger.Info("scheduled export run completed",
			slog.Duration("duration", time.Since(started)),
		)
	case errors.Is(err, lock.ErrLocked):
		s.logger.Warn("scheduled export run skipped", slog.Any("error", err))
	default:
		s.logger.Error("scheduled export run failed",
			slog.Any("error", err),
			slog.Duration("duration", time.Since(started)),
		)
	}
}
