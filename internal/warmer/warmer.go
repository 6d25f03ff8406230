// Package warmer refreshes frequently requested cache entries on a cron
// schedule so that callers rarely pay for a cold aggregation.
package warmer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/jobmerge/internal/model"
)

// Target recomputes and overwrites cache entries. *service.Service
// satisfies it.
type Target interface {
	Warm(ctx context.Context, req model.SearchRequest) error
	WarmTrending(ctx context.Context) error
}

// Warmer owns the cron loop.
type Warmer struct {
	target   Target
	spec     string
	requests []model.SearchRequest
	logger   *slog.Logger
}

// New creates a warmer that refreshes each request, then the trending
// listing, on every tick of spec.
func New(target Target, spec string, requests []model.SearchRequest, logger *slog.Logger) *Warmer {
	return &Warmer{
		target:   target,
		spec:     spec,
		requests: requests,
		logger:   logger,
	}
}

// Run registers the job, warms once immediately, then blocks until ctx is
// cancelled. It waits for an in-flight warm to finish before returning.
func (w *Warmer) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{w.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.logger})),
	)
	if _, err := c.AddFunc(w.spec, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	w.logger.Info("starting cache warmer", "schedule", w.spec, "requests", len(w.requests))
	c.Start()

	w.RunOnce(ctx)

	<-ctx.Done()
	w.logger.Info("shutting down cache warmer")
	<-c.Stop().Done()
	return nil
}

// RunOnce warms every configured entry sequentially. Failures are logged and
// do not stop the remaining entries.
func (w *Warmer) RunOnce(ctx context.Context) {
	start := time.Now()
	warmed := 0
	for _, req := range w.requests {
		if ctx.Err() != nil {
			return
		}
		if err := w.target.Warm(ctx, req); err != nil {
			w.logger.Error("warm failed",
				"keyword", req.Keyword,
				"scope", req.Scope,
				"error", err,
			)
			continue
		}
		warmed++
	}

	if ctx.Err() != nil {
		return
	}
	if err := w.target.WarmTrending(ctx); err != nil {
		w.logger.Error("warm trending failed", "error", err)
	} else {
		warmed++
	}

	w.logger.Info("cache warm complete",
		"warmed", warmed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
