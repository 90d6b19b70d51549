package cache

import (
	"context"
	"sync"
	"time"

	corecache "github.com/pulsestack/pulse-sentinel/internal/cache"
)

// Memory is an in-process TTL cache implementing the cache.Provider contract.
// It is the default report cache when no redis endpoint is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]entry)}
}

// Get retrieves a cached value if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	it, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return nil, corecache.ErrCacheMiss
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return nil, corecache.ErrCacheMiss
	}
	return append([]byte(nil), it.value...), nil
}

// Set stores a value; a non-positive TTL stores without expiry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = newEntry(value, ttl)
	return nil
}

// SetNX stores the value only when the key is absent or expired.
func (m *Memory) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if it, ok := m.data[key]; ok {
		if it.expiresAt.IsZero() || time.Now().Before(it.expiresAt) {
			return false, nil
		}
	}
	m.data[key] = newEntry(value, ttl)
	return true, nil
}

// Del removes the key.
func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close discards all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]entry)
	return nil
}

func newEntry(value []byte, ttl time.Duration) entry {
	it := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	return it
}
