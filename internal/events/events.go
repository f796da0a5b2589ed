// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current engagement event schema version.
const SchemaVersion = 1

// Topics for the engagement pipeline.
const (
	// TopicEngagement carries accepted engagement events.
	TopicEngagement = "engagement.events"
)

// Engagement kinds.
const (
	KindView    = "view"
	KindLike    = "like"
	KindUnlike  = "unlike"
	KindComment = "comment"
)

// EngagementEvent is one viewer interaction with one video. Events are
// published by the API layer and folded into catalog counters and viewer
// preferences by the processor.
type EngagementEvent struct {
	SchemaVersion int    `json:"schema_version"`
	EventID       string `json:"event_id"`

	// ViewerID may be empty for anonymous engagement; such events still
	// update catalog counters but carry no preference signal.
	ViewerID string `json:"viewer_id,omitempty"`

	VideoID   string    `json:"video_id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEngagementEvent builds a versioned, uniquely identified event.
func NewEngagementEvent(viewerID, videoID, kind string) *EngagementEvent {
	return &EngagementEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		ViewerID:      viewerID,
		VideoID:       videoID,
		Kind:          kind,
		Timestamp:     time.Now().UTC(),
	}
}

// ValidKind reports whether kind is a known engagement kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindView, KindLike, KindUnlike, KindComment:
		return true
	}
	return false
}

// Validate checks the event for processing.
func (e *EngagementEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("engagement event missing event_id")
	}
	if e.VideoID == "" {
		return fmt.Errorf("engagement event missing video_id")
	}
	if !ValidKind(e.Kind) {
		return fmt.Errorf("unknown engagement kind %q", e.Kind)
	}
	return nil
}

// Marshal serializes the event for the wire.
func (e *EngagementEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEngagementEvent deserializes an event payload.
func UnmarshalEngagementEvent(data []byte) (*EngagementEvent, error) {
	var e EngagementEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal engagement event: %w", err)
	}
	return &e, nil
}
