package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a cache shared between server processes. Values are stored as
// JSON under prefix+key with a Redis-side expiry.
type Redis[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client
func NewRedis[V any](client *redis.Client, prefix string, ttl time.Duration) *Redis[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis[V]{client: client, prefix: prefix, ttl: ttl}
}

// Connect opens a client and checks it with PING
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Get treats every failure as a miss so callers fall through to the provider
func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var value V

	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: redis get %s failed: %v", key, err)
		}
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Printf("cache: dropping undecodable entry %s: %v", key, err)
		return value, false
	}
	return value, true
}

// Set is best effort; a failed write only costs a later upstream call
func (r *Redis[V]) Set(ctx context.Context, key string, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to encode %s: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		log.Printf("cache: redis set %s failed: %v", key, err)
	}
}
