package cache

import (
	"sync"
	"time"
)

// lruEntry is a node in the doubly-linked list backing the LRU tier.
type lruEntry struct {
	key       string
	value     []byte
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// LRU is a thread-safe least-recently-used cache with per-entry TTL and lazy
// expiration. A doubly-linked list keeps access order and a map gives O(1)
// lookup; head.next is most recently used, tail.prev is least.
type LRU struct {
	mu sync.Mutex

	capacity int
	maxTTL   time.Duration
	items    map[string]*lruEntry
	head     *lruEntry
	tail     *lruEntry

	// now is replaceable in tests to simulate expiry.
	now func() time.Time

	hits   int64
	misses int64
}

// NewLRU creates an LRU with the given entry capacity and maximum TTL. Entries
// may be added with a shorter TTL but never outlive maxTTL.
func NewLRU(capacity int, maxTTL time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1024
	}
	if maxTTL <= 0 {
		maxTTL = 5 * time.Minute
	}

	c := &LRU{
		capacity: capacity,
		maxTTL:   maxTTL,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the cached value and true if present and unexpired. Hits move
// the entry to the front; expired entries are removed on access.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.misses++
		return nil, false
	}

	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

// Add inserts or refreshes an entry with the given TTL, capped at the cache's
// maximum. The least recently used entry is evicted when over capacity.
func (c *LRU) Add(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 || ttl > c.maxTTL {
		ttl = c.maxTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)

	if entry, exists := c.items[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove deletes an entry. Returns true if it was present.
func (c *LRU) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the current entry count.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counters since creation.
func (c *LRU) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Internal list operations, called with the lock held.

func (c *LRU) addToFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRU) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRU) removeEntry(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *LRU) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
