// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

// Package main is the entry point for the Clipfeed server.
//
// Clipfeed is a self-hosted short-form video feed engine: it ranks a video
// catalog per viewer (tag affinity, engagement, recency, quality, a touch
// of exploration), diversifies the ordering, and serves it page by page
// over a small HTTP API. Engagement flows back in through an asynchronous
// event pipeline and becomes the personalization signal for future feeds.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layered load (defaults, config.yaml, env)
//  2. Logging: zerolog, JSON or console per config
//  3. Catalog: DuckDB video store (optionally seeded with mock data)
//  4. History: BadgerDB watch-history and preference store
//  5. Events: Watermill engagement pipeline (optional)
//  6. Feed engine: scoring, diversification, pagination
//  7. HTTP API: Chi router behind a suture supervision tree
//
// The server shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/clipfeed/internal/api"
	"github.com/tomtom215/clipfeed/internal/catalog"
	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/events"
	"github.com/tomtom215/clipfeed/internal/feed"
	"github.com/tomtom215/clipfeed/internal/history"
	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/supervisor"
)

// mockCatalogSize is the number of videos seeded when database.seed_mock_data
// is enabled.
const mockCatalogSize = 200

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting Clipfeed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog store (DuckDB).
	catalogStore, err := catalog.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer closeQuietly("catalog", catalogStore.Close)

	if cfg.Database.SeedMockData {
		if err := catalogStore.SeedMockData(ctx, mockCatalogSize); err != nil {
			return fmt.Errorf("seed mock catalog: %w", err)
		}
	}

	// History store (BadgerDB).
	historyStore, err := history.Open(&cfg.History)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer closeQuietly("history", historyStore.Close)

	// Engagement pipeline (optional).
	var (
		pipeline  *events.Pipeline
		publisher api.EventPublisher
	)
	if cfg.Events.Enabled {
		pipeline, err = events.NewPipeline(
			&cfg.Events,
			events.NewProcessor(catalogStore, historyStore),
			events.NewWatermillLogger(),
		)
		if err != nil {
			return fmt.Errorf("build event pipeline: %w", err)
		}
		defer closeQuietly("event pipeline", pipeline.Close)
		publisher = pipeline.Publisher
	}

	// Feed engine. Preference and history reads go through circuit
	// breakers so a struggling Badger store degrades feeds instead of
	// stalling them.
	engine := feed.NewEngine(
		&cfg.Feed,
		catalogStore,
		feed.NewResilientPreferenceSource(historyStore),
		feed.NewResilientHistorySource(historyStore),
	)

	// HTTP surface.
	handler := api.NewHandler(engine, catalogStore, publisher, &cfg.API)
	router := api.NewRouter(handler, &cfg.API)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	// Supervision tree.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.Timeout))
	tree.AddPipelineService(supervisor.NewMaintenanceService(historyStore, cfg.History.GCInterval))
	if pipeline != nil {
		tree.AddPipelineService(supervisor.NewPipelineService(pipeline))
	}

	logging.Info().Str("addr", server.Addr).Msg("Clipfeed listening")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervision tree exited: %w", err)
	}

	logging.Info().Msg("Clipfeed stopped")
	return nil
}

// closeQuietly logs close errors instead of masking the run error.
func closeQuietly(name string, close func() error) {
	if err := close(); err != nil {
		logging.Warn().Err(err).Str("component", name).Msg("Close failed")
	}
}
