// Package schedule re-runs jobs on a standard five-field cron expression.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. The context is canceled when the
// scheduler stops.
type Job func(ctx context.Context)

// Scheduler wraps a cron runner. A job that is still running when its next
// tick arrives skips that tick.
type Scheduler struct {
	Cron   *cron.Cron
	Logger *slog.Logger
	Spec   string

	ctx context.Context
}

func New(spec string, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	cronLogger := cronLogger{logger: logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		Logger: logger,
		Spec:   spec,
		ctx:    context.Background(),
	}, nil
}

// Add registers job under the scheduler's cron expression.
func (s *Scheduler) Add(name string, job Job) error {
	_, err := s.Cron.AddFunc(s.Spec, func() {
		started := time.Now()
		s.Logger.Info("Scheduled job started", "job", name)
		job(s.ctx)
		s.Logger.Info("Scheduled job finished", "job", name, "duration", time.Since(started).String())
	})
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to return.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.Cron.Start()
	s.Logger.Info("Scheduler started", "cron", s.Spec, "next", s.Next())

	<-ctx.Done()

	s.Logger.Info("Scheduler stopping")
	<-s.Cron.Stop().Done()
	s.Logger.Info("Scheduler stopped")
}

// Next returns the next activation time, or the zero time if no job is
// registered.
func (s *Scheduler) Next() time.Time {
	entries := s.Cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now())
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
