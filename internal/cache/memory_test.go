package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobmerge/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sampleResult() model.SearchResult {
	return model.SearchResult{
		Jobs: []model.Job{
			{ID: "remotive_1", Title: "Go Dev", Requirements: []string{"go"}},
			{ID: "db-1", Title: "SRE", Requirements: []string{}},
		},
		TotalCount: 2,
		Page:       1,
		TotalPages: 1,
	}
}

func TestMemoryCache_SetThenGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)}
	c := NewMemoryCache().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "fp", sampleResult(), MixedTTL))

	e, ok, err := c.Get(ctx, "fp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), e.Payload)
	assert.Equal(t, "fp", e.Fingerprint)
	assert.Equal(t, clock.Now().Add(MixedTTL), e.ExpiresAt())
}

func TestMemoryCache_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)}
	c := NewMemoryCache().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "fp", sampleResult(), MixedTTL))

	clock.Advance(MixedTTL - time.Second)
	_, ok, _ := c.Get(ctx, "fp")
	assert.True(t, ok, "entry should be live just before its TTL")

	clock.Advance(time.Second)
	_, ok, _ = c.Get(ctx, "fp")
	assert.False(t, ok, "entry should expire at its TTL")
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on read")
}

func TestMemoryCache_WallClockExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", sampleResult(), 20*time.Millisecond))
	_, ok, _ := c.Get(ctx, "short")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok, _ = c.Get(ctx, "short")
	assert.False(t, ok, "entry should expire after its TTL")

	// Expired entries are swept on the next write.
	require.NoError(t, c.Set(ctx, "long", sampleResult(), MixedTTL))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_FlushAll(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", sampleResult(), MixedTTL))
	require.NoError(t, c.Set(ctx, "b", sampleResult(), ExternalTTL))

	require.NoError(t, c.FlushAll(ctx))

	for _, fp := range []string{"a", "b"} {
		_, ok, err := c.Get(ctx, fp)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	payload := sampleResult()
	require.NoError(t, c.Set(ctx, "fp", payload, MixedTTL))
	payload.Jobs[0].Title = "mutated after set"

	e, _, _ := c.Get(ctx, "fp")
	e.Payload.Jobs[0].Requirements[0] = "mutated after get"

	again, _, _ := c.Get(ctx, "fp")
	assert.Equal(t, "Go Dev", again.Payload.Jobs[0].Title)
	assert.Equal(t, "go", again.Payload.Jobs[0].Requirements[0])
}

func TestMemoryCache_NonPositiveTTLNotStored(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Set(context.Background(), "fp", sampleResult(), 0))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = c.Set(ctx, "shared", sampleResult(), MixedTTL)
				_, _, _ = c.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()

	_, ok, err := c.Get(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, ok)
}
