// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package config

import (
	"time"
)

// Config is the root configuration for the Clipfeed server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	History  HistoryConfig  `koanf:"history"`
	Feed     FeedConfig     `koanf:"feed"`
	API      APIConfig      `koanf:"api"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB catalog store settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty means in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory usage (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = use runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedMockData populates the catalog with synthetic videos on startup.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// HistoryConfig holds Badger watch-history store settings.
type HistoryConfig struct {
	// Path is the Badger data directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence (tests, ephemeral deploys).
	InMemory bool `koanf:"in_memory"`

	// RetentionDays is the TTL applied to watch-history entries.
	RetentionDays int `koanf:"retention_days"`

	// GCInterval is how often the value-log garbage collector runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// FeedConfig holds the ranking engine settings.
// Scoring weights themselves live in the feed package; this section exposes
// the operational knobs that vary per deployment.
type FeedConfig struct {
	// CandidateWindow bounds how far back the candidate fetcher looks.
	CandidateWindow time.Duration `koanf:"candidate_window"`

	// MaxPoolSize caps the number of candidates fetched per ranking pass.
	MaxPoolSize int `koanf:"max_pool_size"`

	// MinCatalogForExclusion is the catalog size below which watched-video
	// exclusion is waived entirely.
	MinCatalogForExclusion int `koanf:"min_catalog_for_exclusion"`

	// TierSize is the score-tier width used by the diversifier shuffle.
	TierSize int `koanf:"tier_size"`

	// CreatorWindow is the no-repeat window for creators in the final order.
	CreatorWindow int `koanf:"creator_window"`

	// TagWindow and TagMaxShared bound tag repetition: at most TagMaxShared
	// of any TagWindow consecutive videos may share a tag.
	TagWindow    int `koanf:"tag_window"`
	TagMaxShared int `koanf:"tag_max_shared"`

	// ViolationPolicy selects how diversity violations are handled:
	// "drop", "defer", or "relax".
	ViolationPolicy string `koanf:"violation_policy"`

	// PaginationPolicy selects page stability semantics:
	// "recompute" (fresh ranking per page) or "snapshot" (TTL-cached order).
	PaginationPolicy string `koanf:"pagination_policy"`

	// SnapshotTTL and SnapshotCapacity size the ranking snapshot cache.
	// Only used when PaginationPolicy is "snapshot".
	SnapshotTTL      time.Duration `koanf:"snapshot_ttl"`
	SnapshotCapacity int           `koanf:"snapshot_capacity"`

	// Seed fixes the exploration/shuffle random source. 0 = time-seeded.
	Seed int64 `koanf:"seed"`
}

// APIConfig holds API surface settings.
type APIConfig struct {
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// EventsConfig holds engagement event pipeline settings.
type EventsConfig struct {
	// Enabled toggles the Watermill event router.
	Enabled bool `koanf:"enabled"`

	// RateLimitPerMinute caps engagement events per requester.
	// 0 disables the per-requester limit.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// DedupTTL is how long event IDs are remembered for deduplication.
	DedupTTL time.Duration `koanf:"dedup_ttl"`

	// Router middleware settings (Watermill Router).
	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	PoisonQueueEnabled         bool          `koanf:"poison_queue_enabled"`
	PoisonQueueTopic           string        `koanf:"poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "development", // Set ENVIRONMENT=production for production checks
		},
		Database: DatabaseConfig{
			Path:         "/data/clipfeed.duckdb",
			MaxMemory:    "2GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			SeedMockData: false,
		},
		History: HistoryConfig{
			Path:          "/data/history",
			InMemory:      false,
			RetentionDays: 90,
			GCInterval:    5 * time.Minute,
		},
		Feed: FeedConfig{
			CandidateWindow:        30 * 24 * time.Hour,
			MaxPoolSize:            500,
			MinCatalogForExclusion: 20,
			TierSize:               5,
			CreatorWindow:          3,
			TagWindow:              3,
			TagMaxShared:           2,
			ViolationPolicy:        "drop",
			PaginationPolicy:       "recompute",
			SnapshotTTL:            2 * time.Minute,
			SnapshotCapacity:       10000,
			Seed:                   0, // time-seeded
		},
		API: APIConfig{
			DefaultPageSize:   10,
			MaxPageSize:       100,
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Events: EventsConfig{
			Enabled:                    true,
			RateLimitPerMinute:         120,
			DedupTTL:                   5 * time.Minute,
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			PoisonQueueEnabled:         true,
			PoisonQueueTopic:           "engagement.poison",
			RouterCloseTimeout:         30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
