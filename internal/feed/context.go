// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"context"

	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/metrics"
)

// Degradation signal names, reported in Page.Degraded and on the
// feed_degradations_total metric.
const (
	signalPreferences     = "preferences"
	signalHistory         = "history"
	signalCatalogTooSmall = "exclusion_waived_catalog"
	signalViewerExhausted = "exclusion_waived_exhausted"
)

// buildViewerContext assembles the personalization state for one request.
//
// Preference and history reads are recoverable: on failure the request
// degrades (cold-start scoring, exclusion waived) instead of erroring.
// Anonymous viewers skip both reads entirely.
func (e *Engine) buildViewerContext(ctx context.Context, viewerID string) *ViewerContext {
	vctx := &ViewerContext{ViewerID: viewerID}
	if vctx.Anonymous() {
		return vctx
	}

	affinity, err := e.prefs.TagAffinity(ctx, viewerID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("viewer_id", viewerID).
			Msg("Preference read failed, degrading to cold-start scoring")
		metrics.RecordDependencyFailure("preferences")
		vctx.degrade(signalPreferences)
	} else {
		vctx.TagAffinity = affinity
	}

	seen, err := e.history.SeenIDs(ctx, viewerID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("viewer_id", viewerID).
			Msg("History read failed, serving unfiltered feed")
		metrics.RecordDependencyFailure("history")
		vctx.degrade(signalHistory)
		vctx.ExclusionWaived = true
		return vctx
	}

	vctx.SeenIDs = make(map[string]struct{}, len(seen))
	for _, id := range seen {
		vctx.SeenIDs[id] = struct{}{}
	}
	return vctx
}

// applyExclusionPolicy decides, per request, whether seen videos are removed
// from the pool or merely penalized. The decision is never cached: catalog
// size and watch history both move between requests.
//
// Exclusion is waived when the catalog is too small to survive filtering, or
// when the viewer has watched so much that filtering could not fill a page.
func (e *Engine) applyExclusionPolicy(ctx context.Context, vctx *ViewerContext, totalCatalog, pageSize int) {
	if vctx.Anonymous() || vctx.ExclusionWaived || len(vctx.SeenIDs) == 0 {
		return
	}

	if totalCatalog <= e.cfg.MinCatalogForExclusion {
		logging.Ctx(ctx).Debug().Int("catalog_size", totalCatalog).
			Msg("Catalog below exclusion threshold, keeping seen videos")
		vctx.degrade(signalCatalogTooSmall)
		vctx.ExclusionWaived = true
		return
	}

	if totalCatalog-len(vctx.SeenIDs) < pageSize {
		logging.Ctx(ctx).Debug().Str("viewer_id", vctx.ViewerID).
			Int("unwatched", totalCatalog-len(vctx.SeenIDs)).
			Msg("Viewer has exhausted the catalog, keeping seen videos")
		vctx.degrade(signalViewerExhausted)
		vctx.ExclusionWaived = true
	}
}

// degrade records a degradation signal on the context and the metric.
func (v *ViewerContext) degrade(signal string) {
	v.Degraded = append(v.Degraded, signal)
	metrics.RecordDegradation(signal)
}
