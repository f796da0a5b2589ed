// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for compression, performance
monitoring, request ID tracking, and Prometheus metrics integration. The chi
router composes these with the go-chi cors and httprate middlewares to form
the complete request processing stack.

Key Components:

  - Compression: Gzip compression for responses
  - Performance Monitor: Request latency tracking with percentile calculations
  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation

Middleware Stack:

The typical stack for an endpoint, outermost first:

	cors -> httprate -> RequestID -> PrometheusMetrics -> Compression -> handler

Usage Example - Compression:

	import "github.com/tomtom215/clipfeed/internal/middleware"

	r.Get("/api/v1/feed", middleware.Compression(handler))
*/
package middleware
