// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package cache

import (
	"sync"
	"testing"
	"time"
)

func TestSlidingWindowCounterBasic(t *testing.T) {
	sw := NewSlidingWindowCounter(time.Minute, 10)

	sw.IncrementOne()
	sw.IncrementOne()
	sw.Increment(3)

	if got := sw.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
}

func TestSlidingWindowCounterReset(t *testing.T) {
	sw := NewSlidingWindowCounter(time.Minute, 10)

	sw.Increment(10)
	sw.Reset()

	if got := sw.Count(); got != 0 {
		t.Errorf("Count() after Reset = %d, want 0", got)
	}
}

func TestSlidingWindowCounterExpiry(t *testing.T) {
	// 50ms window with 5 buckets of 10ms each.
	sw := NewSlidingWindowCounter(50*time.Millisecond, 5)

	sw.Increment(10)
	time.Sleep(70 * time.Millisecond)

	if got := sw.Count(); got != 0 {
		t.Errorf("Count() after window elapsed = %d, want 0", got)
	}
}

func TestSlidingWindowCounterDefaults(t *testing.T) {
	sw := NewSlidingWindowCounter(0, 0)
	sw.IncrementOne()
	if got := sw.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestSlidingWindowStorePerKey(t *testing.T) {
	store := NewSlidingWindowStore(time.Minute, 10, 0)

	store.Increment("viewer:a")
	store.Increment("viewer:a")
	store.Increment("viewer:b")

	if got := store.Count("viewer:a"); got != 2 {
		t.Errorf("Count(viewer:a) = %d, want 2", got)
	}
	if got := store.Count("viewer:b"); got != 1 {
		t.Errorf("Count(viewer:b) = %d, want 1", got)
	}
	if got := store.Count("viewer:unknown"); got != 0 {
		t.Errorf("Count(unknown) = %d, want 0", got)
	}
}

func TestSlidingWindowStoreMaxKeys(t *testing.T) {
	store := NewSlidingWindowStore(time.Minute, 10, 2)

	store.Increment("a")
	store.Increment("b")
	store.Increment("c")

	if got := store.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 after eviction", got)
	}
}

func TestSlidingWindowStoreCleanupInactive(t *testing.T) {
	store := NewSlidingWindowStore(30*time.Millisecond, 3, 0)

	store.Increment("stale")
	time.Sleep(50 * time.Millisecond)
	store.Increment("fresh")

	removed := store.CleanupInactive()
	if removed != 1 {
		t.Errorf("CleanupInactive() = %d, want 1", removed)
	}
	if store.Count("fresh") != 1 {
		t.Error("expected fresh counter to survive cleanup")
	}
}

func TestSlidingWindowStoreConcurrent(t *testing.T) {
	store := NewSlidingWindowStore(time.Minute, 10, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Increment("shared")
			}
		}()
	}
	wg.Wait()

	if got := store.Count("shared"); got != 1000 {
		t.Errorf("Count(shared) = %d, want 1000", got)
	}
}
