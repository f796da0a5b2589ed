// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package config

import (
	"fmt"
)

// Validate checks the entire configuration for consistency.
// It is called by LoadWithKoanf; the server refuses to start on error.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateHistory(); err != nil {
		return err
	}

	if err := c.validateFeed(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be development, staging, or production, got %q", c.Server.Environment)
	}
	return nil
}

// validateDatabase validates DuckDB catalog configuration
func (c *Config) validateDatabase() error {
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

// validateHistory validates Badger history store configuration
func (c *Config) validateHistory() error {
	if !c.History.InMemory && c.History.Path == "" {
		return fmt.Errorf("history.path is required unless history.in_memory is set")
	}
	if c.History.RetentionDays <= 0 {
		return fmt.Errorf("history.retention_days must be positive, got %d", c.History.RetentionDays)
	}
	if c.History.GCInterval <= 0 {
		return fmt.Errorf("history.gc_interval must be positive, got %v", c.History.GCInterval)
	}
	return nil
}

// validateFeed validates ranking engine configuration
func (c *Config) validateFeed() error {
	f := c.Feed

	if f.CandidateWindow <= 0 {
		return fmt.Errorf("feed.candidate_window must be positive, got %v", f.CandidateWindow)
	}
	if f.MaxPoolSize <= 0 {
		return fmt.Errorf("feed.max_pool_size must be positive, got %d", f.MaxPoolSize)
	}
	if f.MinCatalogForExclusion < 0 {
		return fmt.Errorf("feed.min_catalog_for_exclusion must not be negative, got %d", f.MinCatalogForExclusion)
	}
	if f.TierSize <= 0 {
		return fmt.Errorf("feed.tier_size must be positive, got %d", f.TierSize)
	}
	if f.CreatorWindow < 0 {
		return fmt.Errorf("feed.creator_window must not be negative, got %d", f.CreatorWindow)
	}
	if f.TagWindow <= 0 {
		return fmt.Errorf("feed.tag_window must be positive, got %d", f.TagWindow)
	}
	if f.TagMaxShared <= 0 || f.TagMaxShared > f.TagWindow {
		return fmt.Errorf("feed.tag_max_shared must be in [1, tag_window], got %d", f.TagMaxShared)
	}

	switch f.ViolationPolicy {
	case "drop", "defer", "relax":
	default:
		return fmt.Errorf("feed.violation_policy must be drop, defer, or relax, got %q", f.ViolationPolicy)
	}

	switch f.PaginationPolicy {
	case "recompute", "snapshot":
	default:
		return fmt.Errorf("feed.pagination_policy must be recompute or snapshot, got %q", f.PaginationPolicy)
	}

	if f.PaginationPolicy == "snapshot" {
		if f.SnapshotTTL <= 0 {
			return fmt.Errorf("feed.snapshot_ttl must be positive, got %v", f.SnapshotTTL)
		}
		if f.SnapshotCapacity <= 0 {
			return fmt.Errorf("feed.snapshot_capacity must be positive, got %d", f.SnapshotCapacity)
		}
	}

	return nil
}

// validateAPI validates API surface configuration
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize <= 0 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if !c.API.RateLimitDisabled {
		if c.API.RateLimitReqs <= 0 {
			return fmt.Errorf("api.rate_limit_reqs must be positive, got %d", c.API.RateLimitReqs)
		}
		if c.API.RateLimitWindow <= 0 {
			return fmt.Errorf("api.rate_limit_window must be positive, got %v", c.API.RateLimitWindow)
		}
	}
	return nil
}

// validateEvents validates engagement event pipeline configuration
func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.RateLimitPerMinute < 0 {
		return fmt.Errorf("events.rate_limit_per_minute must not be negative, got %d", c.Events.RateLimitPerMinute)
	}
	if c.Events.DedupTTL <= 0 {
		return fmt.Errorf("events.dedup_ttl must be positive, got %v", c.Events.DedupTTL)
	}
	if c.Events.RouterRetryCount < 0 {
		return fmt.Errorf("events.router_retry_count must not be negative, got %d", c.Events.RouterRetryCount)
	}
	if c.Events.PoisonQueueEnabled && c.Events.PoisonQueueTopic == "" {
		return fmt.Errorf("events.poison_queue_topic is required when the poison queue is enabled")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, fatal, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
