// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"context"
	"time"

	"github.com/tomtom215/clipfeed/internal/models"
)

// Request describes one feed page request.
type Request struct {
	// ViewerID identifies the viewer. Empty means anonymous: no exclusion,
	// no personalization.
	ViewerID string

	// Page is the zero-based page index.
	Page int

	// PageSize is the number of videos per page.
	PageSize int

	// FastPath requests the unpersonalized recency feed. Only honored for
	// page zero; deeper pages always take the ranked path.
	FastPath bool
}

// ViewerContext is the per-request personalization state assembled before
// scoring. It is built fresh on every request and never cached across
// requests, so exclusion decisions always reflect current catalog size and
// watch history.
type ViewerContext struct {
	ViewerID string

	// TagAffinity maps tag to a normalized weight in [0, 1]. Empty for
	// anonymous or cold-start viewers.
	TagAffinity map[string]float64

	// SeenIDs is the viewer's watch history within retention.
	SeenIDs map[string]struct{}

	// ExclusionWaived is set when seen videos stay in the candidate pool
	// (small catalog, exhausted viewer, or degraded history source). Seen
	// candidates then score with a heavy penalty instead of being removed.
	ExclusionWaived bool

	// Degraded lists the signals that could not be loaded this request.
	Degraded []string
}

// Anonymous reports whether this context carries no viewer identity.
func (v *ViewerContext) Anonymous() bool {
	return v.ViewerID == ""
}

// HasSeen reports whether the viewer already watched the given video.
func (v *ViewerContext) HasSeen(videoID string) bool {
	_, ok := v.SeenIDs[videoID]
	return ok
}

// ScoredCandidate pairs a candidate video with its composite score.
type ScoredCandidate struct {
	Video models.Video
	Score float64
}

// Page is one delivered feed page.
type Page struct {
	Videos   []models.Video `json:"videos"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`

	// Path is "ranked" or "fast".
	Path string `json:"path"`

	// Source is "recompute", "snapshot", or "fast".
	Source string `json:"source"`

	// Degraded lists personalization signals that were unavailable, so
	// clients can tell a degraded feed from a fully personalized one.
	Degraded []string `json:"degraded,omitempty"`
}

// CandidateSource supplies the candidate pool. A failure here is fatal for
// the request: the engine never serves an empty feed that silently masks a
// catalog outage.
type CandidateSource interface {
	// FetchRecent returns videos created at or after since, newest first,
	// skipping excluded IDs, up to limit.
	FetchRecent(ctx context.Context, since time.Time, excluded []string, limit int) ([]models.Video, error)

	// TotalCount returns the catalog size.
	TotalCount(ctx context.Context) (int, error)
}

// PreferenceSource supplies learned tag affinity, normalized to [0, 1].
// A nil map with nil error means the viewer has no affinity data yet.
// Failures are recoverable: the engine degrades to cold-start scoring.
type PreferenceSource interface {
	TagAffinity(ctx context.Context, viewerID string) (map[string]float64, error)
}

// HistorySource supplies watch history. Failures are recoverable: the
// engine degrades to an unfiltered feed with exclusion waived.
type HistorySource interface {
	SeenIDs(ctx context.Context, viewerID string) ([]string, error)
}
