// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCacheAddGet(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Add("snapshot:viewer-1", []string{"v1", "v2", "v3"})

	got, ok := c.Get("snapshot:viewer-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	ids, ok := got.([]string)
	if !ok || len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %v", got)
	}

	if _, ok := c.Get("snapshot:missing"); ok {
		t.Error("expected cache miss for unknown key")
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache(3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Touch "a" so "b" becomes the LRU entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}

	c.Add("d", 4)

	if c.Contains("b") {
		t.Error("expected b to be evicted")
	}
	if !c.Contains("a") || !c.Contains("c") || !c.Contains("d") {
		t.Error("expected a, c, d to remain")
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Add("short-lived", "value")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short-lived"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLRUCacheIsDuplicate(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	if c.IsDuplicate("event-1") {
		t.Error("first occurrence must not be a duplicate")
	}
	if !c.IsDuplicate("event-1") {
		t.Error("second occurrence must be a duplicate")
	}
}

func TestLRUCacheRemoveAndClear(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Add("a", 1)
	if !c.Remove("a") {
		t.Error("expected Remove to report true")
	}
	if c.Remove("a") {
		t.Error("expected Remove of absent key to report false")
	}

	c.Add("b", 2)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestLRUCacheCleanupExpired(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Add("a", 1)
	c.Add("b", 2)
	time.Sleep(20 * time.Millisecond)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestLRUCacheStats(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Add("a", 1)
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("stats = %d/%d/%d, want 1/1/1", hits, misses, size)
	}
}

func TestLRUCacheConcurrentAccess(t *testing.T) {
	c := NewLRUCache(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j)
				c.Add(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("cache exceeded capacity: %d", c.Len())
	}
}
