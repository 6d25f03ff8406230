package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobmerge/internal/model"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 5 * time.Second

// Ensure Isolated implements model.JobSource.
var _ model.JobSource = (*Isolated)(nil)

// Isolated is a decorator that turns a JobFetcher into a JobSource: every
// call gets its own timeout, and any failure (network, status, decode,
// missing credentials, panic) is logged and degrades to an empty slice.
type Isolated struct {
	inner   model.JobFetcher
	timeout time.Duration
	logger  *slog.Logger
}

// Isolate wraps inner. A non-positive timeout means DefaultTimeout.
func Isolate(inner model.JobFetcher, timeout time.Duration, logger *slog.Logger) *Isolated {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Isolated{inner: inner, timeout: timeout, logger: logger}
}

func (f *Isolated) Source() model.Source { return f.inner.Source() }

func (f *Isolated) RemoteOnly() bool { return f.inner.RemoteOnly() }

// Fetch calls the wrapped fetcher and never fails.
func (f *Isolated) Fetch(ctx context.Context, params model.FetchParams) (jobs []model.Job) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	source := f.inner.Source()

	defer func() {
		if r := recover(); r != nil {
			f.logger.Warn("source panicked, contributing no jobs",
				"source", source,
				"error", fmt.Sprint(r),
			)
			jobs = []model.Job{}
		}
	}()

	var err error
	jobs, err = f.inner.FetchJobs(ctx, params)
	if err != nil {
		if errors.Is(err, model.ErrMissingCredentials) {
			f.logger.Warn("source credentials not configured, skipping", "source", source)
		} else {
			f.logger.Warn("source unavailable, contributing no jobs",
				"source", source,
				"elapsed", time.Since(start).Round(time.Millisecond),
				"error", err,
			)
		}
		return []model.Job{}
	}
	if jobs == nil {
		jobs = []model.Job{}
	}

	f.logger.Debug("fetched source",
		"source", source,
		"jobs", len(jobs),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return jobs
}
