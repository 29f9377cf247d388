// ABOUTME: Thread-safe TTL cache for remote responses, size-limited with oldest-first eviction
// ABOUTME: Entries expire a fixed duration after insertion; a background goroutine sweeps them

package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultTTL is how long a cached response stays valid.
const DefaultTTL = 5 * time.Minute

// cacheEntry stores a value, its insertion time and its list element.
type cacheEntry struct {
	value    any
	inserted time.Time
	element  *list.Element
}

// Cache is a TTL- and size-bounded map of string keys to values.
// Insertion order is kept in a doubly-linked list for O(1) eviction.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    *list.List // keys, oldest at front
	ttl      time.Duration
	maxSize  int
	now      func() time.Time
	interval time.Duration
	done     chan struct{}
	closed   bool
}

// New creates a cache with the given TTL and maximum size and starts the
// cleanup goroutine. Call Close to stop it.
func New(ttl time.Duration, maxSize int) *Cache {
	return newCache(ttl, maxSize, time.Minute, time.Now)
}

func newCache(ttl time.Duration, maxSize int, interval time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = 256
	}
	c := &Cache{
		entries:  make(map[string]*cacheEntry),
		order:    list.New(),
		ttl:      ttl,
		maxSize:  maxSize,
		now:      now,
		interval: interval,
		done:     make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns the value cached under key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.inserted) >= c.ttl {
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key, restarting its TTL. When the cache is full
// the oldest entry is evicted.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, exists := c.entries[key]; exists {
		entry.value = value
		entry.inserted = now
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &cacheEntry{value: value, inserted: now, element: elem}
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		c.order.Remove(entry.element)
		delete(c.entries, key)
	}
}

// Clear empties the cache unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order.Init()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the front of the order list. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep drops every expired entry.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.inserted) >= c.ttl {
			c.order.Remove(entry.element)
			delete(c.entries, key)
		}
	}
}

// Close stops the cleanup goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
