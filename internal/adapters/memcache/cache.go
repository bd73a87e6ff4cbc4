package memcache

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrMiss is returned by Get for a missing or expired key.
var ErrMiss = errors.New("cache miss")

// Cache implements ports.CacheService in process memory. It is the fallback
// when Valkey is not reachable, so entries are not shared between replicas.
type Cache struct {
	store *gocache.Cache
}

// New creates an in-memory cache that sweeps expired entries every cleanup interval.
func New(cleanup time.Duration) *Cache {
	return &Cache{store: gocache.New(gocache.NoExpiration, cleanup)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return b, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	ttl := gocache.NoExpiration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	// Copy so callers can reuse their buffer.
	c.store.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Ping always succeeds.
func (c *Cache) Ping(context.Context) error { return nil }

// Len reports the number of entries, including expired ones not yet swept.
func (c *Cache) Len() int { return c.store.ItemCount() }
