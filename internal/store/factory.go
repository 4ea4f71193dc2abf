package store

import (
	"fmt"
	"strings"

	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/utils"
)

// NewStore creates a Store based on configuration.
// Default is the memory store if type is not specified.
func NewStore(cfg config.StoreConfig) (Store, error) {
	storeType := utils.StoreType(strings.ToLower(cfg.Type))
	if storeType == "" {
		storeType = utils.StoreTypeMemory
	}

	switch storeType {
	case utils.StoreTypeMemory:
		return newMemoryStore(), nil

	case utils.StoreTypeRedis:
		return newRedisStore(RedisConfig{
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})

	default:
		return nil, fmt.Errorf("unsupported store type: %s (supported: memory, redis)", storeType)
	}
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return newMemoryStore()
}
