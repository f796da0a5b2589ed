// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

// Package cache provides high-performance in-memory data structures for
// caching, deduplication, and rate accounting.
//
// Two structures cover Clipfeed's access patterns:
//
//   - LRUCache: thread-safe LRU with TTL, O(1) operations. Used for ranking
//     snapshots (stable pagination) and engagement event deduplication.
//   - SlidingWindowCounter / SlidingWindowStore: bucketed sliding window
//     counters. Used for per-requester engagement rate limiting.
package cache
