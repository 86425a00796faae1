package mycache

import (
	"context"
	"os"
	"time"
)

// Cache is a byte-oriented cache with per-entry TTL. Entries may vanish at
// any moment; callers must treat a miss as "compute again".
type Cache interface {
	Get(c context.Context, key string) ([]byte, bool, error)
	Set(c context.Context, key string, value []byte, ttl time.Duration) error
}

func New(c context.Context) (Cache, func(), error) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return NewRedisCache(addr)
	}

	return NewInMemoryCache()
}
