package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process cache used when Redis is not configured.
// Values do not survive a restart.
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	if defaultExpiration == 0 {
		defaultExpiration = cache.NoExpiration
	}
	return &CacheService{cache: cache.New(defaultExpiration, cleanUpInterval)}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	if duration == 0 {
		duration = cache.DefaultExpiration
	}
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

// Close is a no-op for the in-memory cache
func (cs *CacheService) Close() error {
	return nil
}
