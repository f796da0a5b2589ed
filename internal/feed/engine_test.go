// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/models"
)

// fakeCatalog is an in-memory CandidateSource.
type fakeCatalog struct {
	videos   []models.Video
	fetchErr error
	countErr error
}

func (f *fakeCatalog) FetchRecent(ctx context.Context, since time.Time, excluded []string, limit int) ([]models.Video, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}

	var out []models.Video
	for _, v := range f.videos {
		if v.CreatedAt.Before(since) {
			continue
		}
		if _, ok := skip[v.ID]; ok {
			continue
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalog) TotalCount(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.videos), nil
}

// fakePrefs is an in-memory PreferenceSource.
type fakePrefs struct {
	affinity map[string]map[string]float64
	err      error
}

func (f *fakePrefs) TagAffinity(ctx context.Context, viewerID string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.affinity[viewerID], nil
}

// fakeHistory is an in-memory HistorySource.
type fakeHistory struct {
	seen map[string][]string
	err  error
}

func (f *fakeHistory) SeenIDs(ctx context.Context, viewerID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.seen[viewerID], nil
}

// testFeedConfig returns a deterministic engine configuration.
func testFeedConfig() *config.FeedConfig {
	return &config.FeedConfig{
		CandidateWindow:        30 * 24 * time.Hour,
		MaxPoolSize:            500,
		MinCatalogForExclusion: 20,
		TierSize:               5,
		CreatorWindow:          3,
		TagWindow:              3,
		TagMaxShared:           2,
		ViolationPolicy:        PolicyDrop,
		PaginationPolicy:       PaginationRecompute,
		SnapshotTTL:            2 * time.Minute,
		SnapshotCapacity:       100,
		Seed:                   42,
	}
}

// catalogOf builds n videos with distinct creators and rotating tags.
func catalogOf(n int) []models.Video {
	tags := []string{"comedy", "pets", "music", "sports", "cooking", "travel", "diy"}
	videos := make([]models.Video, n)
	for i := 0; i < n; i++ {
		videos[i] = models.Video{
			ID:           fmt.Sprintf("v%03d", i),
			CreatorID:    fmt.Sprintf("creator-%03d", i),
			Title:        fmt.Sprintf("Video %d", i),
			Tags:         []string{tags[i%len(tags)]},
			ViewCount:    int64(100 * (i + 1)),
			LikeCount:    int64(10 * (i + 1)),
			CommentCount: int64(i),
			CreatedAt:    fixedNow.Add(-time.Duration(i+1) * time.Hour),
		}
	}
	return videos
}

func newTestEngine(catalog *fakeCatalog, prefs *fakePrefs, history *fakeHistory, cfg *config.FeedConfig) *Engine {
	if cfg == nil {
		cfg = testFeedConfig()
	}
	return NewEngine(cfg, catalog, prefs, history, WithClock(func() time.Time { return fixedNow }))
}

func TestGetFeedInvalidRequest(t *testing.T) {
	e := newTestEngine(&fakeCatalog{}, &fakePrefs{}, &fakeHistory{}, nil)
	ctx := context.Background()

	cases := []Request{
		{ViewerID: "v", Page: -1, PageSize: 10},
		{ViewerID: "v", Page: 0, PageSize: 0},
		{ViewerID: "v", Page: 0, PageSize: -5},
	}
	for _, req := range cases {
		if _, err := e.GetFeed(ctx, req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("GetFeed(%+v): expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestCatalogFailureIsFatal(t *testing.T) {
	e := newTestEngine(&fakeCatalog{fetchErr: errors.New("duckdb down")}, &fakePrefs{}, &fakeHistory{}, nil)

	_, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if !errors.Is(err, ErrCandidateSourceUnavailable) {
		t.Fatalf("expected ErrCandidateSourceUnavailable, got %v", err)
	}

	// Count failures are equally fatal.
	e = newTestEngine(&fakeCatalog{videos: catalogOf(5), countErr: errors.New("timeout")}, &fakePrefs{}, &fakeHistory{}, nil)
	_, err = e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if !errors.Is(err, ErrCandidateSourceUnavailable) {
		t.Fatalf("expected ErrCandidateSourceUnavailable for count failure, got %v", err)
	}
}

func TestEmptyCatalogYieldsEmptyPage(t *testing.T) {
	e := newTestEngine(&fakeCatalog{}, &fakePrefs{}, &fakeHistory{}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatalf("empty catalog must not error: %v", err)
	}
	if page.Videos == nil || len(page.Videos) != 0 {
		t.Errorf("expected empty video list, got %v", page.Videos)
	}
}

func TestPageHasNoDuplicates(t *testing.T) {
	e := newTestEngine(&fakeCatalog{videos: catalogOf(60)}, &fakePrefs{}, &fakeHistory{}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Videos) != 20 {
		t.Fatalf("expected 20 videos, got %d", len(page.Videos))
	}
	if len(idSet(page.Videos)) != len(page.Videos) {
		t.Error("page contains duplicate videos")
	}
}

func TestExclusionRemovesSeenVideos(t *testing.T) {
	history := &fakeHistory{seen: map[string][]string{
		"v": {"v000", "v001", "v002"},
	}}
	e := newTestEngine(&fakeCatalog{videos: catalogOf(60)}, &fakePrefs{}, history, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 50})
	if err != nil {
		t.Fatal(err)
	}

	got := idSet(page.Videos)
	for _, id := range history.seen["v"] {
		if _, ok := got[id]; ok {
			t.Errorf("seen video %s appeared in feed", id)
		}
	}
	if len(page.Degraded) != 0 {
		t.Errorf("unexpected degradation: %v", page.Degraded)
	}
}

func TestExclusionWaivedForSmallCatalog(t *testing.T) {
	// 10 videos, all seen: below the exclusion floor the feed still serves
	// them rather than going empty.
	videos := catalogOf(10)
	var seen []string
	for _, v := range videos {
		seen = append(seen, v.ID)
	}

	e := newTestEngine(&fakeCatalog{videos: videos}, &fakePrefs{}, &fakeHistory{seen: map[string][]string{"v": seen}}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Videos) != 10 {
		t.Fatalf("expected full page despite all-seen history, got %d videos", len(page.Videos))
	}

	found := false
	for _, sig := range page.Degraded {
		if sig == signalCatalogTooSmall {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s degradation, got %v", signalCatalogTooSmall, page.Degraded)
	}
}

func TestExclusionWaivedForExhaustedViewer(t *testing.T) {
	// 30 videos (above the floor), 25 seen: 5 unwatched cannot fill a page
	// of 10, so exclusion is waived and seen videos rank below unwatched.
	videos := catalogOf(30)
	var seen []string
	for i := 0; i < 25; i++ {
		seen = append(seen, videos[i].ID)
	}

	e := newTestEngine(&fakeCatalog{videos: videos}, &fakePrefs{}, &fakeHistory{seen: map[string][]string{"v": seen}}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Videos) != 10 {
		t.Fatalf("expected 10 videos, got %d", len(page.Videos))
	}

	found := false
	for _, sig := range page.Degraded {
		if sig == signalViewerExhausted {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s degradation, got %v", signalViewerExhausted, page.Degraded)
	}

	// The viewed penalty must push every unwatched video ahead of the
	// seen ones: the first five slots are the five unwatched videos.
	seenSet := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		seenSet[id] = struct{}{}
	}
	for i := 0; i < 5; i++ {
		if _, wasSeen := seenSet[page.Videos[i].ID]; wasSeen {
			t.Errorf("slot %d holds seen video %s ahead of unwatched ones", i, page.Videos[i].ID)
		}
	}
}

func TestPreferenceFailureDegrades(t *testing.T) {
	e := newTestEngine(&fakeCatalog{videos: catalogOf(40)}, &fakePrefs{err: errors.New("badger iterator")}, &fakeHistory{}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatalf("preference failure must not fail the request: %v", err)
	}
	if len(page.Videos) != 10 {
		t.Fatalf("expected full page, got %d", len(page.Videos))
	}
	if len(page.Degraded) != 1 || page.Degraded[0] != signalPreferences {
		t.Errorf("Degraded = %v, want [%s]", page.Degraded, signalPreferences)
	}
}

func TestHistoryFailureDegrades(t *testing.T) {
	e := newTestEngine(&fakeCatalog{videos: catalogOf(40)}, &fakePrefs{}, &fakeHistory{err: errors.New("badger closed")}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatalf("history failure must not fail the request: %v", err)
	}
	if len(page.Videos) != 10 {
		t.Fatalf("expected full page, got %d", len(page.Videos))
	}

	found := false
	for _, sig := range page.Degraded {
		if sig == signalHistory {
			found = true
		}
	}
	if !found {
		t.Errorf("Degraded = %v, want %s", page.Degraded, signalHistory)
	}
}

func TestAnonymousViewerSkipsPersonalization(t *testing.T) {
	prefs := &fakePrefs{err: errors.New("must not be called")}
	history := &fakeHistory{err: errors.New("must not be called")}
	e := newTestEngine(&fakeCatalog{videos: catalogOf(40)}, prefs, history, nil)

	page, err := e.GetFeed(context.Background(), Request{Page: 0, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Videos) != 10 {
		t.Fatalf("expected 10 videos, got %d", len(page.Videos))
	}
	if len(page.Degraded) != 0 {
		t.Errorf("anonymous request must not report degradation, got %v", page.Degraded)
	}
}

func TestFastPathViewerIndependent(t *testing.T) {
	catalog := &fakeCatalog{videos: catalogOf(40)}
	prefs := &fakePrefs{affinity: map[string]map[string]float64{
		"alice": {"comedy": 1.0},
	}}
	history := &fakeHistory{seen: map[string][]string{
		"alice": {"v000", "v001"},
	}}
	e := newTestEngine(catalog, prefs, history, nil)

	alice, err := e.GetFeed(context.Background(), Request{ViewerID: "alice", Page: 0, PageSize: 10, FastPath: true})
	if err != nil {
		t.Fatal(err)
	}
	anon, err := e.GetFeed(context.Background(), Request{Page: 0, PageSize: 10, FastPath: true})
	if err != nil {
		t.Fatal(err)
	}

	if alice.Path != pathFast || anon.Path != pathFast {
		t.Fatalf("expected fast path, got %s / %s", alice.Path, anon.Path)
	}
	for i := range alice.Videos {
		if alice.Videos[i].ID != anon.Videos[i].ID {
			t.Errorf("fast path differs by viewer at %d: %s vs %s", i, alice.Videos[i].ID, anon.Videos[i].ID)
		}
	}

	// Fast path is pure recency order; seen videos are not excluded.
	for i, want := range []string{"v000", "v001", "v002"} {
		if alice.Videos[i].ID != want {
			t.Errorf("fast path position %d = %s, want %s", i, alice.Videos[i].ID, want)
		}
	}
}

func TestFastPathOnlyOnPageZero(t *testing.T) {
	e := newTestEngine(&fakeCatalog{videos: catalogOf(40)}, &fakePrefs{}, &fakeHistory{}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 1, PageSize: 10, FastPath: true})
	if err != nil {
		t.Fatal(err)
	}
	if page.Path != pathRanked {
		t.Errorf("page 1 with fast flag took path %s, want %s", page.Path, pathRanked)
	}
}

func TestSeededRankingIsDeterministic(t *testing.T) {
	// Same seed, same inputs: two engines produce identical orderings.
	first := newTestEngine(&fakeCatalog{videos: catalogOf(50)}, &fakePrefs{}, &fakeHistory{}, nil)
	second := newTestEngine(&fakeCatalog{videos: catalogOf(50)}, &fakePrefs{}, &fakeHistory{}, nil)

	req := Request{ViewerID: "v", Page: 0, PageSize: 25}
	a, err := first.GetFeed(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.GetFeed(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Videos {
		if a.Videos[i].ID != b.Videos[i].ID {
			t.Errorf("position %d differs: %s vs %s", i, a.Videos[i].ID, b.Videos[i].ID)
		}
	}
}

func TestRecomputePagesAreDisjointUnderFixedSeed(t *testing.T) {
	e := newTestEngine(&fakeCatalog{videos: catalogOf(50)}, &fakePrefs{}, &fakeHistory{}, nil)
	ctx := context.Background()

	p0, err := e.GetFeed(ctx, Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	p1, err := e.GetFeed(ctx, Request{ViewerID: "v", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}

	first := idSet(p0.Videos)
	for _, v := range p1.Videos {
		if _, ok := first[v.ID]; ok {
			t.Errorf("video %s appears on both pages", v.ID)
		}
	}
}

func TestSnapshotPagination(t *testing.T) {
	cfg := testFeedConfig()
	cfg.PaginationPolicy = PaginationSnapshot
	cfg.Seed = 0 // time-seeded; snapshot must still keep pages consistent

	e := newTestEngine(&fakeCatalog{videos: catalogOf(50)}, &fakePrefs{}, &fakeHistory{}, cfg)
	ctx := context.Background()

	p0, err := e.GetFeed(ctx, Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if p0.Source != sourceRecompute {
		t.Fatalf("first page source = %s, want %s", p0.Source, sourceRecompute)
	}

	p1, err := e.GetFeed(ctx, Request{ViewerID: "v", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if p1.Source != sourceSnapshot {
		t.Fatalf("second page source = %s, want %s", p1.Source, sourceSnapshot)
	}

	first := idSet(p0.Videos)
	for _, v := range p1.Videos {
		if _, ok := first[v.ID]; ok {
			t.Errorf("snapshot pages overlap on %s", v.ID)
		}
	}

	// Re-requesting page 0 also comes from the snapshot and matches.
	p0again, err := e.GetFeed(ctx, Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if p0again.Source != sourceSnapshot {
		t.Fatalf("replayed page source = %s, want %s", p0again.Source, sourceSnapshot)
	}
	for i := range p0.Videos {
		if p0.Videos[i].ID != p0again.Videos[i].ID {
			t.Errorf("snapshot replay differs at %d", i)
		}
	}
}

func TestPageBeyondEndIsEmpty(t *testing.T) {
	e := newTestEngine(&fakeCatalog{videos: catalogOf(15)}, &fakePrefs{}, &fakeHistory{}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 9, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Videos) != 0 {
		t.Errorf("expected empty page past catalog end, got %d videos", len(page.Videos))
	}
}

func TestPartialLastPage(t *testing.T) {
	e := newTestEngine(&fakeCatalog{videos: catalogOf(15)}, &fakePrefs{}, &fakeHistory{}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Videos) != 5 {
		t.Errorf("expected 5 videos on the last page, got %d", len(page.Videos))
	}
}

func TestCandidateWindowBoundsPool(t *testing.T) {
	videos := catalogOf(10)
	// Push half the catalog outside the candidate window.
	for i := 5; i < 10; i++ {
		videos[i].CreatedAt = fixedNow.Add(-60 * 24 * time.Hour)
	}

	e := newTestEngine(&fakeCatalog{videos: videos}, &fakePrefs{}, &fakeHistory{}, nil)

	page, err := e.GetFeed(context.Background(), Request{ViewerID: "v", Page: 0, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Videos) != 5 {
		t.Errorf("expected 5 in-window videos, got %d", len(page.Videos))
	}
}

func TestWithRandFactoryOverride(t *testing.T) {
	e := NewEngine(testFeedConfig(), &fakeCatalog{videos: catalogOf(30)}, &fakePrefs{}, &fakeHistory{},
		WithClock(func() time.Time { return fixedNow }),
		WithRandFactory(func() *rand.Rand { return rand.New(rand.NewSource(99)) }),
	)

	req := Request{ViewerID: "v", Page: 0, PageSize: 15}
	a, err := e.GetFeed(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.GetFeed(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Videos {
		if a.Videos[i].ID != b.Videos[i].ID {
			t.Errorf("injected rand factory not deterministic at %d", i)
		}
	}
}
