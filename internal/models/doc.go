// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

// Package models defines the shared data structures used across Clipfeed.
//
// Key types:
//   - APIResponse: standardized HTTP response wrapper
//   - APIError: structured error details
//   - Video: catalog video metadata with engagement counters
//   - MediaRef / MediaKind: closed variant type for media renditions
//
// All HTTP endpoints wrap their payloads in APIResponse so clients get a
// consistent shape for both success and error cases.
package models
