// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package supervisor

import (
	"context"
	"time"

	"github.com/tomtom215/clipfeed/internal/logging"
)

// GarbageCollector matches the history store's GC entry point.
type GarbageCollector interface {
	RunGC() error
}

// MaintenanceService periodically runs BadgerDB value-log garbage
// collection so expired watch history actually releases disk space.
// GC errors are logged and do not kill the service: a failed pass now is
// retried on the next tick.
type MaintenanceService struct {
	gc       GarbageCollector
	interval time.Duration
}

// NewMaintenanceService builds the GC loop.
func NewMaintenanceService(gc GarbageCollector, interval time.Duration) *MaintenanceService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MaintenanceService{gc: gc, interval: interval}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.gc.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("History garbage collection failed")
			}
		}
	}
}

// String identifies the service in suture logs.
func (s *MaintenanceService) String() string {
	return "history-maintenance"
}
