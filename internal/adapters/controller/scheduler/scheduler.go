package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

// JobTimeout bounds a single run of a scheduled job.
const JobTimeout = 5 * time.Minute

type retentionJob interface {
	Run(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *types.Logger
}

// New builds a scheduler evaluating cron expressions in loc.
// A panicking job is recovered and logged.
func New(loc *time.Location, logger *types.Logger) *Scheduler {
	cronLog := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		logger: logger,
	}
}

// AddRetention schedules the expired-event cleanup with a standard 5-field cron spec.
func (s *Scheduler) AddRetention(spec string, job retentionJob) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runRetention(job)
	})
	if err != nil {
		return fmt.Errorf("schedule retention %q: %w", spec, err)
	}
	s.logger.Infof("Retention scheduled (%s)", spec)
	return nil
}

func (s *Scheduler) runRetention(job retentionJob) {
	ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
	defer cancel()

	deleted, err := job.Run(ctx)
	if err != nil {
		s.logger.Errorf("Retention run failed: %v", err)
		return
	}
	s.logger.Infof("Retention run finished, %d events removed", deleted)
}

func (s *Scheduler) Start() {
	s.logger.Info("Scheduler starting")
	s.cron.Start()
}

// Stop prevents new runs and waits for a running job or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts the sugared zap logger to cron.Logger.
type cronLogger struct {
	logger *types.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
