package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	t.Run("SetAndGet", func(t *testing.T) {
		cache.Set("key1", "value1", 0)

		val, ok := cache.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, "value1", val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := cache.Get("nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		cache.Set("key2", "original", 0)
		cache.Set("key2", "updated", 0)

		val, ok := cache.Get("key2")
		assert.True(t, ok)
		assert.Equal(t, "updated", val)
	})
}

func TestLRUCache_TTLBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cache := NewLRUCache(100, time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("activity", 12345, 5*time.Minute)

	// One second before expiry: hit.
	now = now.Add(4*time.Minute + 59*time.Second)
	val, ok := cache.Get("activity")
	assert.True(t, ok)
	assert.Equal(t, 12345, val)

	// One second past expiry: miss.
	now = now.Add(2 * time.Second)
	val, ok = cache.Get("activity")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := NewLRUCache(3, time.Minute)

	cache.Set("key1", "1", 0)
	cache.Set("key2", "2", 0)
	cache.Set("key3", "3", 0)
	assert.Equal(t, 3, cache.Size())

	// Access key1 to make it recently used
	cache.Get("key1")

	// Add new entry, should evict key2 (LRU)
	cache.Set("key4", "4", 0)
	assert.Equal(t, 3, cache.Size())

	_, ok := cache.Get("key2")
	assert.False(t, ok)

	_, ok = cache.Get("key1")
	assert.True(t, ok)
}

func TestLRUCache_Invalidate(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	t.Run("ExactMatch", func(t *testing.T) {
		cache.Set("signal:activity", 1, 0)
		cache.Set("signal:heart", 2, 0)

		count := cache.Invalidate("signal:activity")
		assert.Equal(t, 1, count)

		_, ok := cache.Get("signal:activity")
		assert.False(t, ok)

		_, ok = cache.Get("signal:heart")
		assert.True(t, ok)
	})

	t.Run("WildcardPattern", func(t *testing.T) {
		cache.Clear()
		cache.Set("signal:activity", 1, 0)
		cache.Set("signal:sleep", 2, 0)
		cache.Set("snapshot:full", 3, 0)

		count := cache.Invalidate("signal:*")
		assert.Equal(t, 2, count)

		_, ok := cache.Get("signal:activity")
		assert.False(t, ok)

		_, ok = cache.Get("snapshot:full")
		assert.True(t, ok)
	})
}

func TestLRUCache_ConcurrentAccess(t *testing.T) {
	cache := NewLRUCache(1000, time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			cache.Set(key, n, 0)
		}(i)
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			cache.Get(key)
		}(i)
	}

	wg.Wait()
	// Should not panic
}

func TestService_BasicOperations(t *testing.T) {
	svc := NewService(ServiceConfig{
		Capacity:        100,
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Hour, // Disable auto cleanup for tests
	})
	defer svc.Close()

	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		err := svc.Set(ctx, "key1", "value1", 0)
		require.NoError(t, err)

		val, ok := svc.Get(ctx, "key1")
		assert.True(t, ok)
		assert.Equal(t, "value1", val)
	})

	t.Run("Invalidate", func(t *testing.T) {
		err := svc.Set(ctx, "signal:body", "data", 0)
		require.NoError(t, err)

		err = svc.Invalidate(ctx, "signal:*")
		require.NoError(t, err)

		_, ok := svc.Get(ctx, "signal:body")
		assert.False(t, ok)
	})
}

func TestService_Close(t *testing.T) {
	svc := NewService(DefaultServiceConfig())

	// Should not panic
	svc.Close()
}

func TestService_CleanupExpired(t *testing.T) {
	svc := NewService(ServiceConfig{
		Capacity:        100,
		DefaultTTL:      50 * time.Millisecond,
		CleanupInterval: 30 * time.Millisecond,
	})
	defer svc.Close()

	ctx := context.Background()
	_ = svc.Set(ctx, "temp", "data", 50*time.Millisecond)

	assert.Equal(t, 1, svc.Size())

	// Wait for cleanup
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, svc.Size())
}
