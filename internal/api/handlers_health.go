// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/middleware"
)

// HealthLive serves GET /api/v1/health/live: process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"}, 0, false)
}

// HealthReady serves GET /api/v1/health/ready: dependencies are reachable.
// A failed catalog ping makes the instance not ready; the history store is
// embedded and has no meaningful liveness probe beyond the process itself.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.videos.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness probe failed: catalog unreachable")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeFeedUnavailable,
			"Catalog is unreachable", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "ready"}, 0, false)
}

// Health serves GET /api/v1/health: liveness plus uptime and per-endpoint
// latency stats from the in-process performance monitor.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"endpoints":      h.GetPerformanceStats(),
	}, 0, false)
}

// GetPerformanceStats returns aggregated request latency statistics.
func (h *Handler) GetPerformanceStats() []middleware.EndpointStats {
	if h.perfMon == nil {
		return nil
	}
	return h.perfMon.GetStats()
}
