// Package ratelimit spaces out consecutive calls to the same upstream board.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobmerge/internal/model"
)

// SourceLimiter enforces a minimum delay between requests to the same source.
type SourceLimiter struct {
	mu       sync.Mutex
	next     map[model.Source]time.Time // earliest start of the next call
	minDelay time.Duration
}

// NewSourceLimiter creates a limiter that enforces minDelay between
// consecutive requests to the same source. A zero delay never blocks.
func NewSourceLimiter(minDelay time.Duration) *SourceLimiter {
	return &SourceLimiter{
		next:     make(map[model.Source]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until src may be called again. The slot is reserved before
// sleeping so concurrent waiters queue up one minDelay apart; a cancelled
// wait hands its slot back.
func (l *SourceLimiter) Wait(ctx context.Context, src model.Source) error {
	if l.minDelay <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	start := now
	if at, ok := l.next[src]; ok && at.After(now) {
		start = at
	}
	l.next[src] = start.Add(l.minDelay)
	l.mu.Unlock()

	wait := start.Sub(now)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		l.release(src, start)
		return fmt.Errorf("rate limiter wait for %s: %w", src, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// release gives back an unused slot starting at start. Only the latest
// reservation can be returned; earlier ones leave a gap that later callers
// simply do not wait for.
func (l *SourceLimiter) release(src model.Source, start time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.next[src].Equal(start.Add(l.minDelay)) {
		l.next[src] = start
	}
}

// Fetcher waits for the limiter before delegating to the wrapped fetcher.
type Fetcher struct {
	inner   model.JobFetcher
	limiter *SourceLimiter
}

// Wrap decorates inner. Fetchers for the same source should share limiter.
func Wrap(inner model.JobFetcher, limiter *SourceLimiter) *Fetcher {
	return &Fetcher{inner: inner, limiter: limiter}
}

func (f *Fetcher) Source() model.Source { return f.inner.Source() }
func (f *Fetcher) RemoteOnly() bool     { return f.inner.RemoteOnly() }

func (f *Fetcher) FetchJobs(ctx context.Context, params model.FetchParams) ([]model.Job, error) {
	if err := f.limiter.Wait(ctx, f.inner.Source()); err != nil {
		return nil, err
	}
	return f.inner.FetchJobs(ctx, params)
}
