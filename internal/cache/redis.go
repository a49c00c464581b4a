package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache shared between service instances. Values are stored as
// JSON under prefix+key.
type Redis[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient dials addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     50,
		MinIdleConns: 5,
		PoolTimeout:  2 * time.Second,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		MaxRetries:   1,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// NewRedis returns a Redis-backed cache. A zero ttl keeps entries until evicted.
func NewRedis[V any](client *redis.Client, prefix string, ttl time.Duration) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, ttl: ttl}
}

func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var v V
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return v, true, nil
}

func (c *Redis[V]) Put(ctx context.Context, key string, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Redis[V]) Evict(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// RedisGeneration is a Generation shared by every instance using the same key.
type RedisGeneration struct {
	client *redis.Client
	key    string
}

func NewRedisGeneration(client *redis.Client, key string) *RedisGeneration {
	return &RedisGeneration{client: client, key: key}
}

func (g *RedisGeneration) Current(ctx context.Context) (uint64, error) {
	n, err := g.client.Get(ctx, g.key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", g.key, err)
	}
	return n, nil
}

func (g *RedisGeneration) Bump(ctx context.Context) (uint64, error) {
	n, err := g.client.Incr(ctx, g.key).Uint64()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", g.key, err)
	}
	return n, nil
}
