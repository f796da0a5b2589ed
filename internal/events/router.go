// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/clipfeed/internal/config"
)

// Pipeline owns the in-process engagement pipeline: a gochannel pub/sub, the
// admission-controlled publisher, and a Watermill router feeding the
// processor.
//
// The pub/sub is in-process by design. Engagement events are advisory: a
// lost event costs one counter increment, not data integrity, and keeping
// the pipeline embedded means a single-binary deploy.
type Pipeline struct {
	pubsub    *gochannel.GoChannel
	router    *message.Router
	Publisher *Publisher
}

// NewPipeline wires the engagement pipeline per configuration.
//
// Router middleware, outer to inner: panic recovery, exponential-backoff
// retry, then poison queue routing for events that exhaust their retries.
// Publish-time deduplication lives in the Publisher, not here: gochannel
// message UUIDs are stable, but rejecting duplicates before publish keeps
// them out of the retry machinery entirely.
func NewPipeline(cfg *config.EventsConfig, processor *Processor, logger watermill.LoggerAdapter) (*Pipeline, error) {
	if logger == nil {
		logger = NewWatermillLogger()
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.RouterCloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RouterRetryCount,
		InitialInterval: cfg.RouterRetryInitialInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	if cfg.PoisonQueueEnabled && cfg.PoisonQueueTopic != "" {
		poison, err := middleware.PoisonQueue(pubsub, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		router.AddMiddleware(poison)
	}

	router.AddConsumerHandler(
		"engagement-processor",
		TopicEngagement,
		pubsub,
		processor.Handle,
	)

	return &Pipeline{
		pubsub:    pubsub,
		router:    router,
		Publisher: NewPublisher(pubsub, cfg),
	}, nil
}

// Run starts the router and blocks until the context is canceled or the
// router is closed. The publisher accepts events once Running is closed.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.router.Run(ctx)
}

// Running is closed when the router is ready to process messages.
func (p *Pipeline) Running() <-chan struct{} {
	return p.router.Running()
}

// Close shuts down the router and the pub/sub.
func (p *Pipeline) Close() error {
	if err := p.router.Close(); err != nil {
		return fmt.Errorf("close router: %w", err)
	}
	return p.pubsub.Close()
}
