package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisCache connects to JOBMERGE_TEST_REDIS (a redis:// URL) or skips.
func newTestRedisCache(t *testing.T) (*RedisCache, *redis.Client) {
	t.Helper()
	rawURL := os.Getenv("JOBMERGE_TEST_REDIS")
	if rawURL == "" {
		t.Skip("JOBMERGE_TEST_REDIS not set")
	}
	opts, err := redis.ParseURL(rawURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	c := NewRedisCache(client)
	require.NoError(t, c.FlushAll(context.Background()))
	return c, client
}

func TestRedisCache_SetGetFlush(t *testing.T) {
	c, client := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "mixed:abc", sampleResult(), MixedTTL))

	e, ok, err := c.Get(ctx, "mixed:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), e.Payload)
	assert.Equal(t, MixedTTL, e.TTL)

	ttl, err := client.TTL(ctx, KeyPrefix+"mixed:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 29*time.Minute)

	// Keys outside the prefix survive a flush.
	require.NoError(t, client.Set(ctx, "unrelated", "x", time.Minute).Err())
	t.Cleanup(func() { client.Del(context.Background(), "unrelated") })

	require.NoError(t, c.FlushAll(ctx))
	_, ok, err = c.Get(ctx, "mixed:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := client.Exists(ctx, "unrelated").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newTestRedisCache(t)
	_, ok, err := c.Get(context.Background(), "mixed:missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_UnreachableReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedisCache(client)

	_, _, err := c.Get(context.Background(), "mixed:abc")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "mixed:abc", sampleResult(), MixedTTL))
}
