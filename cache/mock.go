package cache

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-memory CacheService without TTL or eviction, for testing.
type MockCache struct {
	mu   sync.Mutex
	data map[string]any

	// GetCalls counts lookups per key.
	GetCalls map[string]int
}

// NewMockCache creates a mock cache.
func NewMockCache() *MockCache {
	return &MockCache{
		data:     make(map[string]any),
		GetCalls: make(map[string]int),
	}
}

// Get retrieves a value.
func (m *MockCache) Get(_ context.Context, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls[key]++
	v, ok := m.data[key]
	return v, ok
}

// Set stores a value, ignoring TTL.
func (m *MockCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Invalidate removes an exact key.
func (m *MockCache) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, pattern)
	return nil
}

// Ensure MockCache implements CacheService
var _ CacheService = (*MockCache)(nil)
