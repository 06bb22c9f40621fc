// Package cache provides a bounded in-memory cache with LRU eviction and
// TTL expiry. It is used to memoize expensive lookups such as repeated
// search queries and embedding calls.
//
// Each cache instance owns its own entries and counters; there is no
// package-level state.
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	scouterr "github.com/docscout/docscout/internal/errors"
)

// Config configures a BoundedCache. Both fields are validated at
// construction; invalid values fail immediately.
type Config struct {
	// MaxSize is the maximum number of live entries (> 0).
	MaxSize int

	// TTL is the maximum entry age before expiry (> 0).
	TTL time.Duration
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// HitRate is hits/(hits+misses), 0 when no requests have occurred.
	HitRate float64
	Size    int
	MaxSize int
}

// entry is a stored value with its insertion/update timestamp.
// Entries never escape the cache.
type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// BoundedCache is a generic key-value cache with LRU eviction and TTL
// expiry. The LRU order is maintained by a doubly-linked list plus a hash
// index, giving O(1) Get/Set/eviction.
//
// All operations are safe for concurrent use; the delete-then-reinsert
// sequence in Set/Get/Has is guarded by a single mutex.
type BoundedCache[K comparable, V any] struct {
	mu     sync.Mutex
	config Config

	// order holds *entry[K,V] values, most-recently-used at the back.
	order *list.List
	index map[K]*list.Element

	hits      uint64
	misses    uint64
	evictions uint64

	// now is replaceable in tests for deterministic expiry.
	now func() time.Time
}

// New creates a BoundedCache with the given configuration.
// It fails fast on MaxSize <= 0 or TTL <= 0, before any entry is stored.
func New[K comparable, V any](cfg Config) (*BoundedCache[K, V], error) {
	if cfg.MaxSize <= 0 {
		return nil, scouterr.CacheConfigError(fmt.Sprintf("maxSize must be positive, got %d", cfg.MaxSize))
	}
	if cfg.TTL <= 0 {
		return nil, scouterr.CacheConfigError(fmt.Sprintf("ttl must be positive, got %s", cfg.TTL))
	}
	return &BoundedCache[K, V]{
		config: cfg,
		order:  list.New(),
		index:  make(map[K]*list.Element, cfg.MaxSize),
		now:    time.Now,
	}, nil
}

// Set stores value under key. An existing key is removed and reinserted so
// it moves to the most-recently-used position. Inserting a new key at
// capacity evicts exactly one entry, the least-recently-used one.
func (c *BoundedCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.order.Remove(el)
		delete(c.index, key)
	} else if c.order.Len() >= c.config.MaxSize {
		c.evictOldest()
	}

	el := c.order.PushBack(&entry[K, V]{key: key, value: value, storedAt: c.now()})
	c.index[key] = el
}

// Get returns the value for key. Absent or expired keys are misses;
// expired entries are removed on access. A hit promotes the entry to
// most-recently-used.
func (c *BoundedCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lookup(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Has reports whether key is present and unexpired, with the same expiry
// and promotion semantics as Get, but without touching the hit/miss
// counters. It exists purely for non-telemetry existence probing.
func (c *BoundedCache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.lookup(key)
	return ok
}

// lookup implements shared Get/Has semantics. Caller must hold c.mu.
func (c *BoundedCache[K, V]) lookup(key K) (V, bool) {
	var zero V
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[K, V])
	if c.expired(ent) {
		c.order.Remove(el)
		delete(c.index, key)
		return zero, false
	}
	c.order.MoveToBack(el)
	return ent.value, true
}

// Delete removes key unconditionally. No-op if absent.
func (c *BoundedCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.order.Remove(el)
		delete(c.index, key)
	}
}

// Clear removes all entries. Hit/miss/eviction counters are preserved.
func (c *BoundedCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.index = make(map[K]*list.Element, c.config.MaxSize)
}

// Len purges all expired entries, then returns the live count.
func (c *BoundedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpired()
	return c.order.Len()
}

// Stats returns a snapshot of the cache counters and current size.
func (c *BoundedCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpired()
	s := Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.order.Len(),
		MaxSize:   c.config.MaxSize,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// ResetStats zeroes the hit/miss/eviction counters without touching
// stored entries.
func (c *BoundedCache[K, V]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// evictOldest removes the single least-recently-used entry and increments
// the eviction counter. Caller must hold c.mu.
func (c *BoundedCache[K, V]) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	ent := front.Value.(*entry[K, V])
	c.order.Remove(front)
	delete(c.index, ent.key)
	c.evictions++
}

// purgeExpired drops every expired entry. Caller must hold c.mu.
func (c *BoundedCache[K, V]) purgeExpired() {
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		ent := el.Value.(*entry[K, V])
		if c.expired(ent) {
			c.order.Remove(el)
			delete(c.index, ent.key)
		}
		el = next
	}
}

// expired reports whether ent's age exceeds the configured TTL.
func (c *BoundedCache[K, V]) expired(ent *entry[K, V]) bool {
	return c.now().Sub(ent.storedAt) > c.config.TTL
}
