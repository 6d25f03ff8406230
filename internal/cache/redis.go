package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobmerge/internal/model"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "jobmerge:cache:"

const scanBatch = 100

// RedisCache implements Cache on Redis. Expiry is delegated to Redis TTLs.
type RedisCache struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, now: time.Now}
}

// NewRedisCacheFromURL connects using a redis:// URL.
func NewRedisCacheFromURL(rawURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewRedisCache(redis.NewClient(opts)), nil
}

func (r *RedisCache) Get(ctx context.Context, fp string) (Entry, bool, error) {
	if fp == "" {
		return Entry{}, false, errors.New("fingerprint cannot be empty")
	}

	raw, err := r.client.Get(ctx, KeyPrefix+fp).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	if e.Payload.Jobs == nil {
		e.Payload.Jobs = []model.Job{}
	}
	return e, true, nil
}

func (r *RedisCache) Set(ctx context.Context, fp string, payload model.SearchResult, ttl time.Duration) error {
	if fp == "" {
		return errors.New("fingerprint cannot be empty")
	}
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(Entry{
		Fingerprint: fp,
		Payload:     payload,
		StoredAt:    r.now().UTC(),
		TTL:         ttl,
	})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := r.client.Set(ctx, KeyPrefix+fp, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// FlushAll deletes every key under KeyPrefix. Other keys in the database are
// left alone.
func (r *RedisCache) FlushAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, KeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
