// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/metrics"
)

// Circuit breakers guard the recoverable personalization reads. When the
// history or preference store misbehaves, the breaker fails those reads fast
// and the engine serves degraded feeds immediately instead of stacking up
// slow requests against a struggling store. The catalog is deliberately not
// wrapped: its failures are fatal per request and must stay visible.
//
// DETERMINISM NOTE: breakers use real time for their interval and timeout
// windows. Unit tests should exercise the underlying sources directly.

// ResilientPreferenceSource wraps a PreferenceSource with a circuit breaker.
type ResilientPreferenceSource struct {
	inner PreferenceSource
	cb    *gobreaker.CircuitBreaker[map[string]float64]
	name  string
}

// NewResilientPreferenceSource wraps src with breaker protection.
func NewResilientPreferenceSource(src PreferenceSource) *ResilientPreferenceSource {
	name := "preference-store"
	return &ResilientPreferenceSource{
		inner: src,
		cb:    gobreaker.NewCircuitBreaker[map[string]float64](breakerSettings(name)),
		name:  name,
	}
}

// TagAffinity implements PreferenceSource.
func (r *ResilientPreferenceSource) TagAffinity(ctx context.Context, viewerID string) (map[string]float64, error) {
	result, err := r.cb.Execute(func() (map[string]float64, error) {
		return r.inner.TagAffinity(ctx, viewerID)
	})
	recordBreakerResult(r.name, err)
	return result, err
}

// ResilientHistorySource wraps a HistorySource with a circuit breaker.
type ResilientHistorySource struct {
	inner HistorySource
	cb    *gobreaker.CircuitBreaker[[]string]
	name  string
}

// NewResilientHistorySource wraps src with breaker protection.
func NewResilientHistorySource(src HistorySource) *ResilientHistorySource {
	name := "history-store"
	return &ResilientHistorySource{
		inner: src,
		cb:    gobreaker.NewCircuitBreaker[[]string](breakerSettings(name)),
		name:  name,
	}
}

// SeenIDs implements HistorySource.
func (r *ResilientHistorySource) SeenIDs(ctx context.Context, viewerID string) ([]string, error) {
	result, err := r.cb.Execute(func() ([]string, error) {
		return r.inner.SeenIDs(ctx, viewerID)
	})
	recordBreakerResult(r.name, err)
	return result, err
}

// breakerSettings is the shared breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func breakerSettings(name string) gobreaker.Settings {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // too few requests to judge
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)

			logging.Info().Str("breaker", name).
				Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	}
}

// recordBreakerResult updates the per-breaker request counters.
func recordBreakerResult(name string, err error) {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
