// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package cache

import (
	"sync"
	"time"
)

// lruEntry is a node in the LRU list.
type lruEntry[V any] struct {
	key       string
	group     string
	value     V
	prev      *lruEntry[V]
	next      *lruEntry[V]
	expiresAt time.Time
}

// LRUCache is a thread-safe Least Recently Used cache with TTL support.
//
// Key features:
//   - O(1) Get, Add, Remove operations
//   - O(1) LRU eviction when capacity is reached
//   - TTL support with lazy expiration
//   - Groups: entries added with AddIfCurrent can be dropped together in
//     time proportional to the group size
//
// A doubly-linked list keeps recency order and a map gives O(1) lookup.
//
// Each group carries a generation that RemoveGroup and Clear advance. A
// caller that captures Generation before computing a value and stores it
// with AddIfCurrent never caches a result computed from data that was
// invalidated in the meantime.
type LRUCache[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*lruEntry[V]

	groups map[string]map[*lruEntry[V]]struct{}
	// gens holds generations of groups invalidated since the last prune.
	// Groups not in gens are at genFloor.
	gens     map[string]uint64
	genSeq   uint64
	genFloor uint64

	// head.next is the most recently used, tail.prev the least.
	head *lruEntry[V]
	tail *lruEntry[V]

	hits   int64
	misses int64
}

// NewLRUCache creates a new LRU cache with the specified capacity and TTL.
func NewLRUCache[V any](capacity int, ttl time.Duration) *LRUCache[V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRUCache[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*lruEntry[V]),
		groups:   make(map[string]map[*lruEntry[V]]struct{}),
		gens:     make(map[string]uint64),
		head:     &lruEntry[V]{},
		tail:     &lruEntry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves an entry from the cache.
// Found entries are moved to the front (most recently used).
func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	if c.now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.misses++
		return zero, false
	}

	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

// Add adds or updates an ungrouped entry in the cache.
// If the cache is at capacity, the least recently used entry is evicted.
func (c *LRUCache[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put("", key, value)
}

// Generation returns the current generation of group.
func (c *LRUCache[V]) Generation(group string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation(group)
}

// AddIfCurrent stores value under key in group only if group is still at
// generation gen. It reports whether the value was stored.
func (c *LRUCache[V]) AddIfCurrent(group, key string, value V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation(group) != gen {
		return false
	}
	c.put(group, key, value)
	return true
}

// RemoveGroup removes every entry of group, advances its generation and
// returns how many entries were removed.
func (c *LRUCache[V]) RemoveGroup(group string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.genSeq++
	c.gens[group] = c.genSeq

	members := c.groups[group]
	removed := len(members)
	for entry := range members {
		c.removeEntry(entry)
	}
	return removed
}

// Remove removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *LRUCache[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the current number of entries in the cache.
func (c *LRUCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries from the cache.
func (c *LRUCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruEntry[V])
	c.groups = make(map[string]map[*lruEntry[V]]struct{})
	c.head.next = c.tail
	c.tail.prev = c.head

	c.genSeq++
	c.genFloor = c.genSeq
	c.gens = make(map[string]uint64)
}

// CleanupExpired removes all expired entries from the cache.
// Returns the number of entries removed.
func (c *LRUCache[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0

	// Walk from tail (oldest) to head (newest)
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}

	c.pruneGenerations()
	return removed
}

// Stats returns cache hit/miss statistics.
func (c *LRUCache[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

func (c *LRUCache[V]) put(group, key string, value V) {
	expiresAt := c.now().Add(c.ttl)

	if entry, exists := c.items[key]; exists {
		if entry.group != group {
			c.removeEntry(entry)
		} else {
			entry.value = value
			entry.expiresAt = expiresAt
			c.moveToFront(entry)
			return
		}
	}

	entry := &lruEntry[V]{
		key:       key,
		group:     group,
		value:     value,
		expiresAt: expiresAt,
	}
	c.addToFront(entry)
	c.items[key] = entry
	if group != "" {
		members, ok := c.groups[group]
		if !ok {
			members = make(map[*lruEntry[V]]struct{})
			c.groups[group] = members
		}
		members[entry] = struct{}{}
	}

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

func (c *LRUCache[V]) generation(group string) uint64 {
	if gen, ok := c.gens[group]; ok {
		return gen
	}
	return c.genFloor
}

// pruneGenerations forgets generations of groups with no live entries.
// Raising the floor to genSeq keeps every forgotten group at or above the
// value it had, so a token captured before an invalidation stays stale.
func (c *LRUCache[V]) pruneGenerations() {
	if len(c.gens) == 0 {
		return
	}
	c.genFloor = c.genSeq
	for group := range c.gens {
		if len(c.groups[group]) == 0 {
			delete(c.gens, group)
		}
	}
}

func (c *LRUCache[V]) addToFront(entry *lruEntry[V]) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRUCache[V]) moveToFront(entry *lruEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRUCache[V]) removeEntry(entry *lruEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
	if entry.group == "" {
		return
	}
	if members := c.groups[entry.group]; members != nil {
		delete(members, entry)
		if len(members) == 0 {
			delete(c.groups, entry.group)
		}
	}
}

func (c *LRUCache[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
