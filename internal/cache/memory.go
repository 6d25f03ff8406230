package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/amishk599/jobmerge/internal/model"
)

// MemoryCache is an in-process Cache backed by ttlcache. Reads never extend
// an entry's lifetime and always hand out copies.
type MemoryCache struct {
	items *ttlcache.Cache[string, Entry]
	now   func() time.Time
}

// NewMemoryCache creates an empty MemoryCache using the wall clock.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: ttlcache.New[string, Entry](
			ttlcache.WithDisableTouchOnHit[string, Entry](),
		),
		now: time.Now,
	}
}

// WithClock replaces the clock used to stamp and expire entries, for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, fp string) (Entry, bool, error) {
	item := c.items.Get(fp)
	if item == nil {
		return Entry{}, false, nil
	}

	e := item.Value()
	if !c.now().Before(e.ExpiresAt()) {
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur := c.items.Get(fp); cur != nil && !c.now().Before(cur.Value().ExpiresAt()) {
			c.items.Delete(fp)
		}
		return Entry{}, false, nil
	}

	e.Payload = cloneResult(e.Payload)
	return e, true, nil
}

func (c *MemoryCache) Set(_ context.Context, fp string, payload model.SearchResult, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.items.DeleteExpired()
	c.items.Set(fp, Entry{
		Fingerprint: fp,
		Payload:     cloneResult(payload),
		StoredAt:    c.now(),
		TTL:         ttl,
	}, ttl)
	return nil
}

func (c *MemoryCache) FlushAll(_ context.Context) error {
	c.items.DeleteAll()
	return nil
}

func (c *MemoryCache) Ping(_ context.Context) error { return nil }

// Len reports the number of stored entries, including expired ones not yet
// evicted.
func (c *MemoryCache) Len() int {
	return c.items.Len()
}
