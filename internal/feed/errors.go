// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import "errors"

var (
	// ErrInvalidRequest is returned for malformed requests (negative page,
	// non-positive page size). Rejected before any store read.
	ErrInvalidRequest = errors.New("invalid feed request")

	// ErrCandidateSourceUnavailable is returned when the catalog cannot be
	// queried. This is fatal: the caller must surface an explicit error
	// rather than an empty feed.
	ErrCandidateSourceUnavailable = errors.New("candidate source unavailable")
)
