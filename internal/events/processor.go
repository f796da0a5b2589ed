// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/clipfeed/internal/catalog"
	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/metrics"
	"github.com/tomtom215/clipfeed/internal/models"
)

// EngagementApplier updates catalog counters for an event. Implemented by
// the catalog store.
type EngagementApplier interface {
	ApplyEngagement(ctx context.Context, videoID, kind string) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}

// InteractionRecorder updates per-viewer state for an event. Implemented by
// the history store.
type InteractionRecorder interface {
	MarkSeen(ctx context.Context, viewerID, videoID string) error
	RecordInteraction(ctx context.Context, viewerID, creatorID string, tags []string, kind string) error
}

// Processor consumes engagement events and applies them to the catalog and
// history stores. One event updates up to three things: the video's
// counters, the viewer's seen set (views only), and the viewer's learned
// preferences.
type Processor struct {
	catalog EngagementApplier
	history InteractionRecorder
}

// NewProcessor builds the engagement event consumer.
func NewProcessor(catalog EngagementApplier, history InteractionRecorder) *Processor {
	return &Processor{catalog: catalog, history: history}
}

// Handle is the Watermill consumer handler for TopicEngagement.
//
// Malformed payloads and events for unknown videos are acked and dropped:
// retrying them cannot succeed and poisoning them adds nothing a log line
// does not. Store errors are returned so the router retries and eventually
// poisons them.
func (p *Processor) Handle(msg *message.Message) error {
	start := time.Now()
	ctx := msg.Context()

	event, err := UnmarshalEngagementEvent(msg.Payload)
	if err != nil {
		metrics.RecordEventRejected("parse_failed")
		logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).
			Msg("Dropping malformed engagement event")
		return nil
	}
	if err := event.Validate(); err != nil {
		metrics.RecordEventRejected("unknown_kind")
		logging.Ctx(ctx).Warn().Err(err).Str("event_id", event.EventID).
			Msg("Dropping invalid engagement event")
		return nil
	}

	if err := p.apply(ctx, event); err != nil {
		if errors.Is(err, catalog.ErrVideoNotFound) {
			metrics.RecordEventRejected("video_not_found")
			logging.Ctx(ctx).Warn().Str("event_id", event.EventID).
				Str("video_id", event.VideoID).
				Msg("Dropping engagement event for unknown video")
			return nil
		}
		return err
	}

	metrics.RecordEventProcessed(event.Kind, time.Since(start))
	return nil
}

// apply folds one event into the stores.
func (p *Processor) apply(ctx context.Context, event *EngagementEvent) error {
	if err := p.catalog.ApplyEngagement(ctx, event.VideoID, event.Kind); err != nil {
		return fmt.Errorf("apply engagement to catalog: %w", err)
	}

	// Anonymous events carry no viewer state.
	if event.ViewerID == "" {
		return nil
	}

	if event.Kind == KindView {
		if err := p.history.MarkSeen(ctx, event.ViewerID, event.VideoID); err != nil {
			return fmt.Errorf("mark seen: %w", err)
		}
	}

	// Preference learning needs the video's creator and tags. The counter
	// update above already proved the video exists.
	video, err := p.catalog.GetVideo(ctx, event.VideoID)
	if err != nil {
		return fmt.Errorf("load video for preference update: %w", err)
	}

	if err := p.history.RecordInteraction(ctx, event.ViewerID, video.CreatorID, video.Tags, event.Kind); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}
