package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores snappy compressed values in Redis.
// Each user has a set listing its live keys so InvalidateUser needs no SCAN.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(url string, db int, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url, DB: db}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func indexKey(userID string) string {
	return "fitlog:cache-index:" + userID
}

// Get retrieves and decompresses a value
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	value, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set compresses and stores a value
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, snappy.Encode(nil, value), c.ttl)
	if owner, ok := ownerOf(key); ok {
		pipe.SAdd(ctx, indexKey(owner), key)
		pipe.Expire(ctx, indexKey(owner), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

// InvalidateUser deletes every tracked key of userID
func (c *RedisCache) InvalidateUser(ctx context.Context, userID string) error {
	index := indexKey(userID)
	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list cache keys of %s: %w", userID, err)
	}

	keys = append(keys, index)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache of %s: %w", userID, err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
