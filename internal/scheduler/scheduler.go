// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ndewijer/mf-folio-backend/internal/model"
)

// Job is one unit of scheduled work. The context is cancelled when the scheduler is
// forced to stop.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. A job never overlaps with its own previous run.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a stopped scheduler.
func New(logger zerolog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under name on a standard five-field cron spec or a descriptor
// such as "@hourly" or "@every 15m".
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		s.logger.Info().Str("job", name).Msg("scheduled job started")

		if err := job(s.ctx); err != nil {
			s.logger.Error().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job failed")
			return
		}
		s.logger.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job finished")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for running jobs to finish.
// When ctx expires first the running jobs' context is cancelled and ctx.Err() returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// Syncer copies holdings for a set of users.
type Syncer interface {
	SyncAll(ctx context.Context, userIDs []string) ([]model.SyncRun, error)
}

// SyncJob returns a Job that syncs userIDs, or every known user when userIDs is empty.
func SyncJob(syncer Syncer, userIDs []string) Job {
	return func(ctx context.Context) error {
		_, err := syncer.SyncAll(ctx, userIDs)
		return err
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
