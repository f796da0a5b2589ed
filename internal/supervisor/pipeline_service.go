// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package supervisor

import (
	"context"
)

// EventPipeline matches events.Pipeline's lifecycle.
type EventPipeline interface {
	Run(ctx context.Context) error
}

// PipelineService runs the engagement event router under supervision. If a
// handler panics its way past the router's own recovery, suture restarts
// the whole pipeline with backoff.
type PipelineService struct {
	pipeline EventPipeline
}

// NewPipelineService wraps the event pipeline as a supervised service.
func NewPipelineService(pipeline EventPipeline) *PipelineService {
	return &PipelineService{pipeline: pipeline}
}

// Serve implements suture.Service. Run blocks until the context is
// canceled or the router is closed.
func (s *PipelineService) Serve(ctx context.Context) error {
	return s.pipeline.Run(ctx)
}

// String identifies the service in suture logs.
func (s *PipelineService) String() string {
	return "engagement-pipeline"
}
