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

	"github.com/tomtom215/clipfeed/internal/cache"
	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/metrics"
)

// Publisher admission errors, surfaced to the API layer.
var (
	ErrRateLimited    = errors.New("engagement rate limit exceeded")
	ErrDuplicateEvent = errors.New("duplicate engagement event")
	ErrInvalidEvent   = errors.New("invalid engagement event")
)

// Publisher validates, rate-limits, deduplicates, and publishes engagement
// events. Admission control runs at publish time so abusive clients are
// rejected before a message ever enters the router.
type Publisher struct {
	pub     message.Publisher
	limiter *cache.SlidingWindowStore
	dedup   *cache.LRUCache
	limit   int
}

// NewPublisher wraps a Watermill publisher with admission control.
// A rate limit of zero disables per-requester limiting.
func NewPublisher(pub message.Publisher, cfg *config.EventsConfig) *Publisher {
	p := &Publisher{
		pub:   pub,
		dedup: cache.NewLRUCache(10000, cfg.DedupTTL),
		limit: cfg.RateLimitPerMinute,
	}
	if cfg.RateLimitPerMinute > 0 {
		p.limiter = cache.NewSlidingWindowStore(time.Minute, 60, 10000)
	}
	return p
}

// Publish admits and publishes one engagement event. The requester key
// (viewer ID or client address) scopes the rate limit.
func (p *Publisher) Publish(ctx context.Context, requester string, event *EngagementEvent) error {
	if err := event.Validate(); err != nil {
		metrics.RecordEventRejected("parse_failed")
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	if p.limiter != nil {
		if p.limiter.Count(requester) >= int64(p.limit) {
			metrics.RecordEventRejected("rate_limited")
			metrics.APIRateLimitHits.WithLabelValues("events").Inc()
			return ErrRateLimited
		}
		p.limiter.Increment(requester)
	}

	if p.dedup.IsDuplicate(event.EventID) {
		metrics.RecordEventRejected("duplicate")
		return ErrDuplicateEvent
	}

	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("marshal engagement event: %w", err)
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.SetContext(ctx)

	if err := p.pub.Publish(TopicEngagement, msg); err != nil {
		return fmt.Errorf("publish engagement event: %w", err)
	}

	metrics.RecordEventPublished(event.Kind)
	logging.Ctx(ctx).Debug().
		Str("event_id", event.EventID).
		Str("video_id", event.VideoID).
		Str("kind", event.Kind).
		Msg("Engagement event published")
	return nil
}
