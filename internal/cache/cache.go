// Package cache provides the TTL cache used in front of slow upstream
// providers. Entries expire after a fixed TTL; there is no other eviction.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL matches the refresh interval of the weather provider
const DefaultTTL = time.Hour

// Cache is a keyed store with time-bounded entries
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a mutex-guarded in-process cache
type Memory[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates an in-process cache. A nil clock uses time.Now.
func NewMemory[V any](ttl time.Duration, now func() time.Time) *Memory[V] {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory[V]{
		items: make(map[string]entry[V]),
		ttl:   ttl,
		now:   now,
	}
}

// Get returns a live entry. Expired entries are dropped lazily.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		// re-check, a concurrent Set may have refreshed the key
		if cur, ok := m.items[key]; ok && !m.now().Before(cur.expiresAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value for the configured TTL
func (m *Memory[V]) Set(_ context.Context, key string, value V) {
	m.mu.Lock()
	m.items[key] = entry[V]{value: value, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet dropped
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
