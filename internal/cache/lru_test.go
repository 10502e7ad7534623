// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	cache := NewLRUCache[int](3, time.Minute)

	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, found := cache.Get(key)
		if !found {
			t.Errorf("Expected to find key %q", key)
			continue
		}
		if got != want {
			t.Errorf("Get(%q) = %d, want %d", key, got, want)
		}
	}

	if cache.Len() != 3 {
		t.Errorf("Expected len 3, got %d", cache.Len())
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := NewLRUCache[string](3, time.Minute)

	cache.Add("a", "A")
	cache.Add("b", "B")
	cache.Add("c", "C")

	// Access 'a' to make it most recently used
	cache.Get("a")

	cache.Add("d", "D")

	if _, found := cache.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := cache.Get(key); !found {
			t.Errorf("Expected %q to be present", key)
		}
	}
}

func TestLRUCache_TTLExpiration(t *testing.T) {
	cache := NewLRUCache[int](10, time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Add("a", 1)
	if _, found := cache.Get("a"); !found {
		t.Fatal("Expected to find key 'a' immediately")
	}

	now = now.Add(2 * time.Minute)

	if _, found := cache.Get("a"); found {
		t.Error("Expected key 'a' to be expired")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be removed on Get, len = %d", cache.Len())
	}
}

func TestLRUCache_UpdateRefreshesValue(t *testing.T) {
	cache := NewLRUCache[int](2, time.Minute)

	cache.Add("a", 1)
	cache.Add("a", 2)

	if got, _ := cache.Get("a"); got != 2 {
		t.Errorf("Get(a) = %d, want 2", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestLRUCache_RemoveGroup(t *testing.T) {
	cache := NewLRUCache[int](10, time.Minute)

	cache.AddIfCurrent("alice", "alice\x00recommend\x005", 1, cache.Generation("alice"))
	cache.AddIfCurrent("alice", "alice\x00worst\x001", 2, cache.Generation("alice"))
	cache.AddIfCurrent("bob", "bob\x00recommend\x005", 3, cache.Generation("bob"))
	cache.Add("ungrouped", 4)

	if removed := cache.RemoveGroup("alice"); removed != 2 {
		t.Errorf("RemoveGroup() = %d, want 2", removed)
	}
	if _, found := cache.Get("bob\x00recommend\x005"); !found {
		t.Error("bob's entry should survive")
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
	if removed := cache.RemoveGroup("alice"); removed != 0 {
		t.Errorf("second RemoveGroup() = %d, want 0", removed)
	}
}

func TestLRUCache_GroupIndexFollowsEviction(t *testing.T) {
	cache := NewLRUCache[int](2, time.Minute)

	cache.AddIfCurrent("alice", "a1", 1, cache.Generation("alice"))
	cache.AddIfCurrent("alice", "a2", 2, cache.Generation("alice"))
	cache.AddIfCurrent("bob", "b1", 3, cache.Generation("bob"))

	// a1 was evicted, so only a2 belongs to alice now.
	if removed := cache.RemoveGroup("alice"); removed != 1 {
		t.Errorf("RemoveGroup() = %d, want 1", removed)
	}
	if len(cache.groups) != 1 {
		t.Errorf("group index holds %d groups, want 1", len(cache.groups))
	}
}

func TestLRUCache_AddIfCurrentRejectsStaleGeneration(t *testing.T) {
	tests := []struct {
		name       string
		invalidate func(c *LRUCache[int])
	}{
		{name: "group removed", invalidate: func(c *LRUCache[int]) { c.RemoveGroup("alice") }},
		{name: "cache cleared", invalidate: func(c *LRUCache[int]) { c.Clear() }},
		{name: "removed then pruned", invalidate: func(c *LRUCache[int]) {
			c.RemoveGroup("alice")
			c.CleanupExpired()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewLRUCache[int](10, time.Minute)
			gen := cache.Generation("alice")

			tt.invalidate(cache)

			if cache.AddIfCurrent("alice", "k", 1, gen) {
				t.Error("AddIfCurrent stored a value computed before invalidation")
			}
			if _, found := cache.Get("k"); found {
				t.Error("stale value is cached")
			}

			fresh := cache.Generation("alice")
			if !cache.AddIfCurrent("alice", "k", 2, fresh) {
				t.Error("AddIfCurrent with the current generation should store")
			}
		})
	}
}

func TestLRUCache_OtherGroupsKeepGeneration(t *testing.T) {
	cache := NewLRUCache[int](10, time.Minute)
	gen := cache.Generation("bob")

	cache.RemoveGroup("alice")

	if !cache.AddIfCurrent("bob", "b", 1, gen) {
		t.Error("invalidating alice must not reject bob's result")
	}
}

func TestLRUCache_RemoveAndClear(t *testing.T) {
	cache := NewLRUCache[int](10, time.Minute)
	cache.Add("a", 1)
	cache.Add("b", 2)

	if !cache.Remove("a") {
		t.Error("Remove(a) should report true")
	}
	if cache.Remove("a") {
		t.Error("second Remove(a) should report false")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d", cache.Len())
	}
	cache.Add("c", 3)
	if _, found := cache.Get("c"); !found {
		t.Error("cache should be usable after Clear")
	}
}

func TestLRUCache_CleanupExpired(t *testing.T) {
	cache := NewLRUCache[int](10, time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Add("old1", 1)
	cache.Add("old2", 2)
	now = now.Add(30 * time.Second)
	cache.Add("fresh", 3)
	now = now.Add(45 * time.Second)

	if removed := cache.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if _, found := cache.Get("fresh"); !found {
		t.Error("fresh entry should survive cleanup")
	}
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache[int](10, time.Minute)
	cache.Add("a", 1)

	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	hits, misses, size := cache.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = (%d, %d, %d), want (2, 1, 1)", hits, misses, size)
	}
}

func TestLRUCache_Defaults(t *testing.T) {
	cache := NewLRUCache[int](0, 0)
	if cache.capacity != 10000 {
		t.Errorf("capacity = %d, want 10000", cache.capacity)
	}
	if cache.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", cache.ttl)
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache := NewLRUCache[int](100, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*i)%150)
				group := fmt.Sprintf("g%d", i%3)
				cache.AddIfCurrent(group, key, i, cache.Generation(group))
				cache.Get(key)
				if i%50 == 0 {
					cache.RemoveGroup("g1")
				}
			}
		}(g)
	}
	wg.Wait()

	if cache.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", cache.Len())
	}
}
