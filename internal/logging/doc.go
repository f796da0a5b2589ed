// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

// Package logging provides centralized zerolog-based structured logging for Clipfeed.
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Context-aware logging with request ID propagation
//   - slog adapter for Suture v4 supervision via sutureslog
//
// # Quick Start
//
//	import "github.com/tomtom215/clipfeed/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("viewer_id", viewerID).Msg("feed request")
//	logging.Error().Err(err).Msg("candidate fetch failed")
//
//	// Context-aware logging (request_id added automatically)
//	logging.Ctx(ctx).Info().Int("page", page).Msg("serving feed page")
//
// Always terminate log chains with .Msg() or .Send(); a chain without a
// terminator is silently dropped by zerolog.
package logging
