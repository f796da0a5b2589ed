// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

// Package metrics provides Prometheus instrumentation for Clipfeed.
//
// All metrics are registered with the default registry via promauto at
// package init, so importing this package is enough to expose them on the
// /metrics endpoint.
//
// Metric groups:
//   - duckdb_*: catalog query performance and errors
//   - feed_*: ranking latency, pool sizes, degradations, diversity handling
//   - api_*: HTTP endpoint latency, throughput, rate limiting
//   - engagement_events_*: event pipeline throughput and rejections
//   - cache_*: snapshot and context cache efficiency
//   - circuit_breaker_*: collaborator breaker state
//   - history_*: watch-history store writes and GC
//
// Recording helpers (RecordFeedRequest, RecordDegradation, ...) are preferred
// over touching the collectors directly so label values stay consistent.
package metrics
