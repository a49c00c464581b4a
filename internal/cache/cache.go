// Package cache provides the read-through cache used for the claim summary.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores values under string keys. A missing or expired key is reported
// as ok == false with a nil error.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Put(ctx context.Context, key string, value V) error
	Evict(ctx context.Context, key string) error
}

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an in-process Cache. A zero TTL means entries never expire.
type Memory[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	ttl   time.Duration
	now   func() time.Time
}

func NewMemory[V any](ttl time.Duration) *Memory[V] {
	return &Memory[V]{
		items: make(map[string]item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	c.mu.RLock()
	it, found := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !found {
		return zero, false, nil
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a fresh Put may have replaced it.
		if cur, ok := c.items[key]; ok && cur.expiresAt.Equal(it.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false, nil
	}
	return it.value, true, nil
}

func (c *Memory[V]) Put(_ context.Context, key string, value V) error {
	it := item[V]{value: value}
	if c.ttl > 0 {
		it.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.items[key] = it
	c.mu.Unlock()
	return nil
}

func (c *Memory[V]) Evict(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}
