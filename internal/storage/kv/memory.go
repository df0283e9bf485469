package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps keys in process memory. Expired entries are evicted by go-cache's
// janitor every cleanupInterval, so abandoned codes do not accumulate.
type Memory struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewMemory(cleanupInterval time.Duration) *Memory {
	return &Memory{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, found := m.cache.Get(key)
	if !found {
		return "", ErrNotFound
	}

	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return fmt.Sprintf("%d", val), nil
	default:
		return fmt.Sprint(val), nil
	}
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.cache.Set(key, value, expiration(ttl))
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, found := m.cache.Get(key)
	if !found {
		return ErrNotFound
	}

	m.cache.Set(key, v, expiration(ttl))
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cache.Add(key, int64(1), gocache.NoExpiration); err == nil {
		return 1, nil
	}

	n, err := m.cache.IncrementInt64(key, 1)
	if err != nil {
		return 0, fmt.Errorf("kv.Memory.Incr: %w", err)
	}

	return n, nil
}

// Len is the number of stored items, expired-but-not-yet-evicted ones included.
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}
