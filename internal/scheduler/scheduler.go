package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/hhnotify/pkg/logging"
)

// Job is a unit of scheduled work
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron expressions; a job never overlaps itself
type Scheduler struct {
	cron    *cron.Cron
	logger  *logging.Logger
	timeout time.Duration
}

// New creates a Scheduler. timeout bounds a single job run; zero means unbounded.
func New(logger *logging.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	cl := cronLogger{log: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// Add registers job under a standard five-field cron spec
func (s *Scheduler) Add(name, spec string, job Job) error {
	log := s.logger.With("job", name)
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := job(ctx); err != nil {
			log.Warn("scheduled job failed", "err", err, "duration", time.Since(start))
			return
		}
		log.Debug("scheduled job finished", "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	log.Info("job scheduled", "spec", spec)
	return nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Shutdown stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Shutdown(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: wait for running jobs: %w", ctx.Err())
	}
}

// cronLogger adapts logging.Logger to cron.Logger
type cronLogger struct {
	log *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
