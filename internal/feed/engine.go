// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/clipfeed/internal/cache"
	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/metrics"
	"github.com/tomtom215/clipfeed/internal/models"
)

// Request path and page source labels.
const (
	// Pagination policies. Recompute reranks on every page request; snapshot
	// freezes a viewer's ordering for the snapshot TTL so page boundaries
	// stay stable while they scroll.
	PaginationRecompute = "recompute"
	PaginationSnapshot  = "snapshot"

	pathRanked = "ranked"
	pathFast   = "fast"

	sourceRecompute = "recompute"
	sourceSnapshot  = "snapshot"
	sourceFast      = "fast"
)

// Engine assembles, scores, diversifies, and paginates feeds. It is
// stateless per request: all per-viewer state lives in the collaborating
// stores, and an Engine is safe for concurrent use.
type Engine struct {
	cfg     *config.FeedConfig
	catalog CandidateSource
	prefs   PreferenceSource
	history HistorySource

	// snapshots caches full diversified orderings per viewer when the
	// pagination policy is "snapshot". Nil under "recompute".
	snapshots *cache.LRUCache

	newRand func() *rand.Rand
	now     func() time.Time
}

// Option customizes an Engine, mainly for tests.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRandFactory overrides the per-request random source factory.
func WithRandFactory(f func() *rand.Rand) Option {
	return func(e *Engine) { e.newRand = f }
}

// NewEngine builds a feed engine over the given stores.
func NewEngine(cfg *config.FeedConfig, catalog CandidateSource, prefs PreferenceSource, history HistorySource, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		catalog: catalog,
		prefs:   prefs,
		history: history,
		now:     time.Now,
		newRand: randFactory(cfg.Seed),
	}

	if cfg.PaginationPolicy == PaginationSnapshot {
		e.snapshots = cache.NewLRUCache(cfg.SnapshotCapacity, cfg.SnapshotTTL)
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// randFactory returns a per-request random source constructor. A fixed seed
// makes every request deterministic; seed zero draws a fresh seed per
// request from the wall clock and a counter, so concurrent requests in the
// same nanosecond still diverge.
func randFactory(seed int64) func() *rand.Rand {
	if seed != 0 {
		return func() *rand.Rand {
			return rand.New(rand.NewSource(seed))
		}
	}

	var counter atomic.Int64
	return func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano() + counter.Add(1)))
	}
}

// GetFeed serves one feed page.
//
// Invalid requests fail before any store read. Catalog failures are fatal;
// preference and history failures degrade the feed and are reported in
// Page.Degraded. An empty catalog yields an empty page, not an error.
func (e *Engine) GetFeed(ctx context.Context, req Request) (*Page, error) {
	if req.Page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", ErrInvalidRequest)
	}
	if req.PageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be positive", ErrInvalidRequest)
	}

	if req.FastPath && req.Page == 0 {
		return e.fastFeed(ctx, req)
	}
	return e.rankedFeed(ctx, req)
}

// fastFeed serves the first page straight from catalog recency order with no
// personalization, exclusion, or scoring. The response is identical for
// every viewer, which is what makes it cacheable upstream.
func (e *Engine) fastFeed(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()

	since := e.now().Add(-e.cfg.CandidateWindow)
	videos, err := e.catalog.FetchRecent(ctx, since, nil, req.PageSize)
	if err != nil {
		metrics.RecordDependencyFailure("catalog")
		return nil, fmt.Errorf("%w: %w", ErrCandidateSourceUnavailable, err)
	}

	metrics.RecordFeedRequest(pathFast, time.Since(start), 0)

	return &Page{
		Videos:   videos,
		Page:     0,
		PageSize: req.PageSize,
		Path:     pathFast,
		Source:   sourceFast,
	}, nil
}

// rankedFeed runs the full pipeline: context assembly and catalog count in
// parallel, then exclusion, candidate fetch, scoring, diversification, and
// pagination.
func (e *Engine) rankedFeed(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()

	if e.snapshots != nil {
		if page, ok := e.snapshotPage(req); ok {
			metrics.FeedPagesServed.WithLabelValues(sourceSnapshot).Inc()
			return page, nil
		}
	}

	// Viewer context and catalog size have no data dependency; overlap the
	// BadgerDB reads with the DuckDB count. The candidate fetch itself waits
	// for the join because the exclusion list is pushed into its query.
	var (
		wg       sync.WaitGroup
		vctx     *ViewerContext
		total    int
		totalErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vctx = e.buildViewerContext(ctx, req.ViewerID)
	}()
	go func() {
		defer wg.Done()
		total, totalErr = e.catalog.TotalCount(ctx)
	}()
	wg.Wait()

	if totalErr != nil {
		metrics.RecordDependencyFailure("catalog")
		return nil, fmt.Errorf("%w: %w", ErrCandidateSourceUnavailable, totalErr)
	}

	e.applyExclusionPolicy(ctx, vctx, total, req.PageSize)

	// Seen videos are excluded in the catalog query rather than post-filtered
	// so the pool cap is spent entirely on servable candidates. When exclusion
	// is waived the seen videos stay in and the scorer penalizes them.
	since := e.now().Add(-e.cfg.CandidateWindow)
	pool, err := e.catalog.FetchRecent(ctx, since, e.excludedIDs(vctx), e.cfg.MaxPoolSize)
	if err != nil {
		metrics.RecordDependencyFailure("catalog")
		return nil, fmt.Errorf("%w: %w", ErrCandidateSourceUnavailable, err)
	}

	if len(pool) == 0 {
		metrics.RecordFeedRequest(pathRanked, time.Since(start), 0)
		return e.emptyPage(req, vctx), nil
	}

	rng := e.newRand()
	scored := newScorer(vctx, rng, e.now()).scoreAll(pool)
	order := newDiversifier(
		e.cfg.TierSize, e.cfg.CreatorWindow,
		e.cfg.TagWindow, e.cfg.TagMaxShared,
		e.cfg.ViolationPolicy, rng,
	).diversify(scored)

	if e.snapshots != nil {
		e.snapshots.Add(snapshotKey(req.ViewerID), order)
	}

	metrics.RecordFeedRequest(pathRanked, time.Since(start), len(pool))
	metrics.FeedPagesServed.WithLabelValues(sourceRecompute).Inc()

	logging.Ctx(ctx).Debug().
		Str("viewer_id", req.ViewerID).
		Int("pool_size", len(pool)).
		Int("page", req.Page).
		Strs("degraded", vctx.Degraded).
		Msg("Ranked feed computed")

	return &Page{
		Videos:   paginate(order, req.Page, req.PageSize),
		Page:     req.Page,
		PageSize: req.PageSize,
		Path:     pathRanked,
		Source:   sourceRecompute,
		Degraded: vctx.Degraded,
	}, nil
}

// snapshotPage serves a page from a cached ordering, if one exists. Expired
// or missing snapshots fall through to a fresh ranking.
func (e *Engine) snapshotPage(req Request) (*Page, bool) {
	val, ok := e.snapshots.Get(snapshotKey(req.ViewerID))
	if !ok {
		return nil, false
	}
	order, ok := val.([]models.Video)
	if !ok {
		return nil, false
	}

	return &Page{
		Videos:   paginate(order, req.Page, req.PageSize),
		Page:     req.Page,
		PageSize: req.PageSize,
		Path:     pathRanked,
		Source:   sourceSnapshot,
	}, true
}

// excludedIDs returns the watch-history exclusion list for the candidate
// query, or nil when exclusion is inactive.
func (e *Engine) excludedIDs(vctx *ViewerContext) []string {
	if vctx.ExclusionWaived || len(vctx.SeenIDs) == 0 {
		return nil
	}

	excluded := make([]string, 0, len(vctx.SeenIDs))
	for id := range vctx.SeenIDs {
		excluded = append(excluded, id)
	}
	return excluded
}

// emptyPage is the empty-catalog response: a well-formed page, not an error.
func (e *Engine) emptyPage(req Request, vctx *ViewerContext) *Page {
	return &Page{
		Videos:   []models.Video{},
		Page:     req.Page,
		PageSize: req.PageSize,
		Path:     pathRanked,
		Source:   sourceRecompute,
		Degraded: vctx.Degraded,
	}
}

// paginate slices one page out of the full ordering. Pages past the end are
// empty, never an error.
func paginate(order []models.Video, page, pageSize int) []models.Video {
	start := page * pageSize
	if start >= len(order) {
		return []models.Video{}
	}
	end := start + pageSize
	if end > len(order) {
		end = len(order)
	}

	out := make([]models.Video, end-start)
	copy(out, order[start:end])
	return out
}

// snapshotKey namespaces snapshot entries per viewer. Anonymous viewers
// share one ordering.
func snapshotKey(viewerID string) string {
	if viewerID == "" {
		return "order:anonymous"
	}
	return "order:" + viewerID
}
