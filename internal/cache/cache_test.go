package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_New(t *testing.T) {
	store := New[string]()

	require.NotNil(t, store)
	assert.Zero(t, store.Len())
}

func TestStore_SetAndGet(t *testing.T) {
	store := New[string]()
	store.Set("grid:52.52,13.405", "payload", time.Minute)

	got, ok := store.Get("grid:52.52,13.405")
	require.True(t, ok, "expected to find live entry")
	assert.Equal(t, "payload", got)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := New[int]()

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestStore_ExpiredEntryIsGone(t *testing.T) {
	store := New[string]()
	current := time.Now()
	store.now = func() time.Time { return current }

	store.Set("k", "v", time.Minute)
	current = current.Add(2 * time.Minute)

	_, ok := store.Get("k")
	assert.False(t, ok, "expired entry should not be returned")
	assert.Zero(t, store.Len())
}

func TestStore_SetRefreshesTTL(t *testing.T) {
	store := New[string]()
	current := time.Now()
	store.now = func() time.Time { return current }

	store.Set("k", "old", time.Minute)
	current = current.Add(30 * time.Second)
	store.Set("k", "new", time.Minute)
	current = current.Add(45 * time.Second)

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestStore_NonPositiveTTLStoresNothing(t *testing.T) {
	store := New[string]()
	store.Set("k", "v", 0)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store := New[string]()
	store.Set("k", "v", time.Minute)
	store.Delete("k")

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestStore_Reset(t *testing.T) {
	store := New[string]()
	store.Set("a", "1", time.Minute)
	store.Set("b", "2", time.Minute)

	store.Reset()
	assert.Zero(t, store.Len())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.Set("shared", n, time.Minute)
		}(i)
		go func() {
			defer wg.Done()
			store.Get("shared")
		}()
	}
	wg.Wait()

	_, ok := store.Get("shared")
	assert.True(t, ok)
}

func TestSafeCounter(t *testing.T) {
	var c SafeCounter

	assert.Zero(t, c.Value())
	c.Inc()
	c.Inc()
	assert.Equal(t, 2, c.Value())
	c.Set(10)
	assert.Equal(t, 10, c.Value())
}

func TestSafeCounter_ConcurrentInc(t *testing.T) {
	var c SafeCounter
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, c.Value())
}
