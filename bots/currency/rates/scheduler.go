package rates

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/twinbots/core/logger"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule refreshes well inside the default TTL.
const DefaultSchedule = "@every 30m"

// Scheduler refreshes a Cache in the background on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers a refresh job; it does not start it.
func NewScheduler(cache *Cache, spec string) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	log := cronLogger{}
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	if _, err := c.AddFunc(spec, func() {
		// Refresh logs its own outcome.
		_ = cache.Refresh(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("rates: schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start runs the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running refresh or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger routes cron's own messages into the rates component.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	args := append([]any{slog.String("event", "cron."+msg)}, keysAndValues...)
	logger.Component("rates").Debug(msg, args...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{slog.String("event", "cron."+msg), slog.Any("err", err)}, keysAndValues...)
	logger.Component("rates").Error(msg, args...)
}
