// Package memory is an in-process PersistentCache. Contents do not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/jsamuelsen/quotify/internal/domain"
)

// Cache is a mutex-guarded map. Values are copied on the way in and out.
type Cache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("get", key, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[key]
	if !ok {
		return nil, domain.NewNotFoundError("cache entry", key)
	}

	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("set", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = append([]byte(nil), value...)

	return nil
}

// Name implements ports.HealthChecker.
func (c *Cache) Name() string { return "cache-memory" }

// Check implements ports.HealthChecker; memory is always available.
func (c *Cache) Check(context.Context) error { return nil }

// Close is a no-op.
func (c *Cache) Close() error { return nil }
