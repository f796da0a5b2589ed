// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

/*
Package history provides the BadgerDB-backed per-viewer state store.

Two kinds of state live here:

  - Watch history: one TTL'd key per (viewer, video) pair. The feed engine
    reads the full seen set when building viewer context; retention expiry
    naturally re-admits old videos into a viewer's feed.
  - Viewer preferences: per-viewer creator and tag affinity learned from
    engagement events, serialized with goccy/go-json.

BadgerDB keeps both local and embedded, so context assembly needs no network
hop. The value-log garbage collector must be run periodically (RunGC);
the maintenance service owns that schedule.
*/
package history
