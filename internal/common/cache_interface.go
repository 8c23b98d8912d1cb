package common

import (
	"time"

	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/logging"
)

// CacheInterface is the small key/value surface the run-status store needs
type CacheInterface interface {
	// Set stores a value under key; a zero duration keeps it until evicted
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the value and true if key is present
	Get(key string) (interface{}, bool)

	Delete(key string)

	// Close releases any underlying connection
	Close() error
}

// NewCache returns Redis when a host is configured and falls back to the
// in-process cache otherwise or when Redis is unreachable.
func NewCache(redisCfg config.RedisConfig) CacheInterface {
	if !redisCfg.Enabled() {
		return NewCacheService(0, 10*time.Minute)
	}

	redisCache, err := NewRedisCacheService(redisCfg)
	if err != nil {
		logging.Warn("Redis unavailable, using in-memory cache", "addr", redisCfg.Addr(), "error", err)
		return NewCacheService(0, 10*time.Minute)
	}
	return redisCache
}
