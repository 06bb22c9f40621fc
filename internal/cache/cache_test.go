package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxSize int, ttl time.Duration) *BoundedCache[string, int] {
	t.Helper()
	c, err := New[string, int](Config{MaxSize: maxSize, TTL: ttl})
	require.NoError(t, err)
	return c
}

// setClock replaces the cache clock with a controllable one and returns
// a function to advance it.
func setClock(c *BoundedCache[string, int]) func(d time.Duration) {
	current := time.Now()
	c.now = func() time.Time { return current }
	return func(d time.Duration) { current = current.Add(d) }
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		ttl     time.Duration
	}{
		{"zero size", 0, time.Minute},
		{"negative size", -5, time.Minute},
		{"zero ttl", 10, 0},
		{"negative ttl", 10, -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[string, int](Config{MaxSize: tt.maxSize, TTL: tt.ttl})
			require.Error(t, err)
		})
	}
}

func TestSet_EvictsExactlyOneLRUEntry(t *testing.T) {
	const n = 5
	c := newTestCache(t, n, time.Minute)

	// Insert N+1 distinct keys into a fresh cache.
	for i := 0; i <= n; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, n, c.Len())
	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Evictions)

	// The oldest key is the one evicted.
	_, ok := c.Get("k0")
	assert.False(t, ok)
	_, ok = c.Get("k1")
	assert.True(t, ok)
}

func TestGet_ExpiredEntryIsMissAndRemoved(t *testing.T) {
	c := newTestCache(t, 10, 50*time.Millisecond)
	advance := setClock(c)

	c.Set("a", 1)
	advance(51 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 0, stats.Size)
}

func TestGet_WithinTTLIsHitAndPromotes(t *testing.T) {
	c := newTestCache(t, 2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	// Access "a" so "b" becomes LRU.
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("c", 3) // evicts "b"

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestHas_NeverChangesCounters(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)
	c.Set("a", 1)

	for i := 0; i < 100; i++ {
		assert.True(t, c.Has("a"))
		assert.False(t, c.Has("missing"))
	}

	stats := c.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
}

func TestHas_PromotesLikeGet(t *testing.T) {
	c := newTestCache(t, 2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Probe "a"; "b" becomes LRU and is evicted next.
	require.True(t, c.Has("a"))
	c.Set("c", 3)

	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("a"))
}

func TestHas_ExpiredEntryRemovedWithoutMiss(t *testing.T) {
	c := newTestCache(t, 10, 50*time.Millisecond)
	advance := setClock(c)

	c.Set("a", 1)
	advance(51 * time.Millisecond)

	assert.False(t, c.Has("a"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, uint64(0), c.Stats().Misses)
}

func TestSet_ExistingKeyMovesToMRU(t *testing.T) {
	c := newTestCache(t, 2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Re-set "a": size unchanged, "a" now MRU.
	c.Set("a", 10)
	assert.Equal(t, 2, c.Len())

	// Next eviction removes "b", not "a".
	c.Set("c", 3)
	_, ok := c.Get("b")
	assert.False(t, ok)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestDelete_UnconditionalAndIdempotent(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)
	c.Set("a", 1)

	c.Delete("a")
	c.Delete("a")
	c.Delete("never-existed")

	assert.Equal(t, 0, c.Len())
}

func TestClear_KeepsCounters(t *testing.T) {
	c := newTestCache(t, 2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // one eviction
	c.Get("a")    // miss or hit depending on eviction order; "a" was evicted
	c.Get("c")    // hit

	before := c.Stats()
	require.NotZero(t, before.Hits+before.Misses+before.Evictions)

	c.Clear()

	after := c.Stats()
	assert.Equal(t, 0, after.Size)
	assert.Equal(t, before.Hits, after.Hits)
	assert.Equal(t, before.Misses, after.Misses)
	assert.Equal(t, before.Evictions, after.Evictions)
}

func TestLen_PurgesExpiredFirst(t *testing.T) {
	c := newTestCache(t, 10, 50*time.Millisecond)
	advance := setClock(c)

	c.Set("a", 1)
	c.Set("b", 2)
	advance(30 * time.Millisecond)
	c.Set("c", 3)
	advance(30 * time.Millisecond)

	// "a" and "b" are now 60ms old, "c" only 30ms.
	assert.Equal(t, 1, c.Len())
}

func TestStats_HitRate(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)

	// No requests: rate is 0, not NaN.
	assert.Equal(t, 0.0, c.Stats().HitRate)

	c.Set("a", 1)
	c.Get("a")       // hit
	c.Get("a")       // hit
	c.Get("missing") // miss

	stats := c.Stats()
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestResetStats_KeepsEntries(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	c.ResetStats()

	stats := c.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, uint64(0), stats.Evictions)
	assert.Equal(t, 1, stats.Size)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCache_InstancesAreIndependent(t *testing.T) {
	a := newTestCache(t, 5, time.Minute)
	b := newTestCache(t, 5, time.Minute)

	a.Set("k", 1)
	a.Get("k")

	assert.Equal(t, uint64(0), b.Stats().Hits)
	assert.False(t, b.Has("k"))
}

func TestCache_StructValues(t *testing.T) {
	type result struct{ IDs []string }
	c, err := New[string, result](Config{MaxSize: 2, TTL: time.Minute})
	require.NoError(t, err)

	c.Set("q", result{IDs: []string{"a", "b"}})
	got, ok := c.Get("q")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got.IDs)
}
