package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Generation is a counter bumped on every invalidation. Instances sharing a
// cache must share the Generation too.
type Generation interface {
	Current(ctx context.Context) (uint64, error)
	Bump(ctx context.Context) (uint64, error)
}

// LocalGeneration is a Generation for a single process.
type LocalGeneration struct {
	n atomic.Uint64
}

func (g *LocalGeneration) Current(context.Context) (uint64, error) { return g.n.Load(), nil }

func (g *LocalGeneration) Bump(context.Context) (uint64, error) { return g.n.Add(1), nil }

// Entry is a cached value tagged with the generation it was computed under.
type Entry[V any] struct {
	Generation uint64 `json:"generation"`
	Value      V      `json:"value"`
}

// HitRecorder is notified of every cache hit.
type HitRecorder interface {
	RecordCacheHit()
}

// Versioned serves an entry only while its generation is current. An entry
// left behind by a failed eviction, or written by a computation that raced an
// invalidation, is reported as a miss.
type Versioned[V any] struct {
	entries Cache[Entry[V]]
	gen     Generation
	hits    HitRecorder
}

// NewVersioned wraps entries. hits may be nil.
func NewVersioned[V any](entries Cache[Entry[V]], gen Generation, hits HitRecorder) *Versioned[V] {
	return &Versioned[V]{entries: entries, gen: gen, hits: hits}
}

// Current returns the generation a new computation should be tagged with.
// Read it before loading the data the value is computed from.
func (v *Versioned[V]) Current(ctx context.Context) (uint64, error) {
	return v.gen.Current(ctx)
}

// Get returns the cached value if it belongs to the current generation.
func (v *Versioned[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	cur, err := v.gen.Current(ctx)
	if err != nil {
		return zero, false, fmt.Errorf("read generation: %w", err)
	}
	e, ok, err := v.entries.Get(ctx, key)
	if err != nil || !ok || e.Generation != cur {
		return zero, false, err
	}
	if v.hits != nil {
		v.hits.RecordCacheHit()
	}
	return e.Value, true, nil
}

// Put stores value computed under gen. It reports false without writing when
// gen is no longer current.
func (v *Versioned[V]) Put(ctx context.Context, key string, gen uint64, value V) (bool, error) {
	cur, err := v.gen.Current(ctx)
	if err != nil {
		return false, fmt.Errorf("read generation: %w", err)
	}
	if cur != gen {
		return false, nil
	}
	if err := v.entries.Put(ctx, key, Entry[V]{Generation: gen, Value: value}); err != nil {
		return false, err
	}
	return true, nil
}

// Invalidate bumps the generation, then evicts key. Once the bump succeeds the
// old entry is never served again, even if the eviction fails.
func (v *Versioned[V]) Invalidate(ctx context.Context, key string) error {
	_, bumpErr := v.gen.Bump(ctx)
	if bumpErr != nil {
		bumpErr = fmt.Errorf("bump generation: %w", bumpErr)
	}
	return errors.Join(bumpErr, v.entries.Evict(ctx, key))
}
