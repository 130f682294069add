// Package bootstrap initializes shared infrastructure before a bot starts.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/twinbots/core/config"
	"github.com/m3rciful/twinbots/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	// Warmups run after the logger, in order. Their failures are logged, never fatal.
	Warmups []Warmup
	// WarmupTimeout bounds each warmup; zero means 15s.
	WarmupTimeout time.Duration
}

// Run initializes the logger and runs the warmups.
func Run(ctx context.Context, opts Options) error {
	if opts.Config == nil {
		return fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	timeout := opts.WarmupTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	for _, w := range opts.Warmups {
		runWarmup(ctx, w, timeout)
	}
	return nil
}

func runWarmup(ctx context.Context, w Warmup, timeout time.Duration) {
	if w.Warmer == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := w.Warm(wctx)
	attrs := []slog.Attr{
		slog.String("name", w.Name),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	if err != nil {
		logger.Warn(ctx, "app", "warmup.fail", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)...)
		return
	}
	logger.Info(ctx, "app", "warmup.done", append(attrs, slog.String("status", "ok"))...)
}
