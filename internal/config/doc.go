// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

// Package config provides layered configuration loading using Koanf v2.
//
// Configuration is assembled from three sources in increasing priority:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (HTTP_PORT, DUCKDB_PATH, LOG_LEVEL, ...)
//
// The resulting Config is validated before use; the server refuses to start
// on invalid configuration rather than degrading silently.
package config
