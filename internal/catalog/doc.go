// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

/*
Package catalog provides the DuckDB-backed video catalog store.

The catalog is the system of record for video metadata and aggregate
engagement counters. The feed engine reads candidates from it on every
ranking pass; the engagement event processor applies counter updates to it
asynchronously.

Key design points:

  - CGO-based driver (github.com/duckdb/duckdb-go/v2)
  - Single-file database (or in-memory for tests) with tuned connection pool
  - Watched-video exclusion pushed into SQL (NOT IN) so the candidate pool
    never materializes excluded rows
  - All queries instrumented via metrics.RecordDBQuery

Schema:

  - videos: id, creator, title, media rendition URLs, engagement counters,
    tags, created_at
*/
package catalog
