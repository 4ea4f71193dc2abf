// Package cache stores rendered analytics responses per user so repeated
// screen loads skip the store round trip.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/fitlogapp/fitlog/internal/config"
)

const keyPrefix = "fitlog:cache:"

// Cache stores opaque values per user
type Cache interface {
	// Get returns the cached value for key
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the backend TTL
	Set(ctx context.Context, key string, value []byte) error

	// InvalidateUser drops every entry built by Key for userID
	InvalidateUser(ctx context.Context, userID string) error

	// Close releases backend resources
	Close() error
}

// Key builds a cache key owned by userID. parts identify the request
// (screen, granularity, range, ...) and are hashed.
func Key(userID string, parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return userPrefix(userID) + hex.EncodeToString(sum[:8])
}

func userPrefix(userID string) string {
	return keyPrefix + userID + ":"
}

// ownerOf extracts the user id from a key built by Key
func ownerOf(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i < 0 {
		return "", false
	}
	return rest[:i], true
}

// NewCache creates a Cache based on configuration.
// A disabled cache never stores anything.
func NewCache(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}

	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return NewMemoryCache(cfg.TTL, cfg.CleanupInterval), nil
	case "redis":
		return newRedisCache(cfg.RedisURL, cfg.RedisDB, cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: memory, redis)", cfg.Type)
	}
}

// Nop is a Cache that never hits
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)   { return nil, false }
func (Nop) Set(context.Context, string, []byte) error    { return nil }
func (Nop) InvalidateUser(context.Context, string) error { return nil }
func (Nop) Close() error                                 { return nil }
