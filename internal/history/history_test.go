// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package history

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/tomtom215/clipfeed/internal/config"
)

// newTestStore opens an in-memory history store.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(&config.HistoryConfig{
		InMemory:      true,
		RetentionDays: 90,
	})
	if err != nil {
		t.Fatalf("failed to open history store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func TestMarkSeenAndSeenIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"v1", "v2", "v3"} {
		if err := s.MarkSeen(ctx, "viewer-a", id); err != nil {
			t.Fatalf("MarkSeen: %v", err)
		}
	}
	if err := s.MarkSeen(ctx, "viewer-b", "v9"); err != nil {
		t.Fatal(err)
	}

	ids, err := s.SeenIDs(ctx, "viewer-a")
	if err != nil {
		t.Fatalf("SeenIDs: %v", err)
	}

	sort.Strings(ids)
	want := []string{"v1", "v2", "v3"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestSeenIDsEmptyForNewViewer(t *testing.T) {
	s := newTestStore(t)

	ids, err := s.SeenIDs(context.Background(), "fresh-viewer")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.MarkSeen(ctx, "viewer-a", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkSeen(ctx, "viewer-a", "v1"); err != nil {
		t.Fatal(err)
	}

	count, err := s.ViewedCount(ctx, "viewer-a")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 seen entry, got %d", count)
	}
}

func TestHasSeen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.MarkSeen(ctx, "viewer-a", "v1"); err != nil {
		t.Fatal(err)
	}

	seen, err := s.HasSeen(ctx, "viewer-a", "v1")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("expected v1 to be seen")
	}

	seen, err = s.HasSeen(ctx, "viewer-a", "v2")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("expected v2 to be unseen")
	}
}

func TestViewerIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.MarkSeen(ctx, "viewer-a", "v1"); err != nil {
		t.Fatal(err)
	}

	count, err := s.ViewedCount(ctx, "viewer-b")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected viewer-b history to be empty, got %d", count)
	}
}

func TestGetPreferencesNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPreferences(context.Background(), "nobody")
	if !errors.Is(err, ErrPreferencesNotFound) {
		t.Errorf("expected ErrPreferencesNotFound, got %v", err)
	}
}

func TestRecordInteractionAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordInteraction(ctx, "viewer-a", "creator-x", []string{"comedy"}, "like"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordInteraction(ctx, "viewer-a", "creator-x", []string{"comedy"}, "comment"); err != nil {
		t.Fatal(err)
	}

	prefs, err := s.GetPreferences(ctx, "viewer-a")
	if err != nil {
		t.Fatal(err)
	}

	if got := prefs.CreatorAffinity["creator-x"]; got != weightLike+weightComment {
		t.Errorf("creator affinity = %v, want %v", got, weightLike+weightComment)
	}
	if got := prefs.TagAffinity["comedy"]; got != weightLike+weightComment {
		t.Errorf("tag affinity = %v, want %v", got, weightLike+weightComment)
	}
	if prefs.Interactions != 2 {
		t.Errorf("interactions = %d, want 2", prefs.Interactions)
	}
}

func TestRecordInteractionUnlikeReverses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordInteraction(ctx, "viewer-a", "creator-x", nil, "like"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordInteraction(ctx, "viewer-a", "creator-x", nil, "unlike"); err != nil {
		t.Fatal(err)
	}

	prefs, err := s.GetPreferences(ctx, "viewer-a")
	if err != nil {
		t.Fatal(err)
	}
	if got := prefs.CreatorAffinity["creator-x"]; got != 0 {
		t.Errorf("creator affinity = %v, want 0", got)
	}
}

func TestRecordInteractionCapped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		if err := s.RecordInteraction(ctx, "viewer-a", "creator-x", nil, "comment"); err != nil {
			t.Fatal(err)
		}
	}

	prefs, err := s.GetPreferences(ctx, "viewer-a")
	if err != nil {
		t.Fatal(err)
	}
	if got := prefs.CreatorAffinity["creator-x"]; got != maxAffinity {
		t.Errorf("creator affinity = %v, want capped at %v", got, maxAffinity)
	}
}

func TestRecordInteractionUnknownKindIgnored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordInteraction(ctx, "viewer-a", "creator-x", nil, "share"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetPreferences(ctx, "viewer-a"); !errors.Is(err, ErrPreferencesNotFound) {
		t.Errorf("expected no preferences recorded, got %v", err)
	}
}

func TestRunGCInMemoryNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC on in-memory store must be a no-op, got %v", err)
	}
}

func TestClosedStoreErrors(t *testing.T) {
	s, err := Open(&config.HistoryConfig{InMemory: true, RetentionDays: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := s.MarkSeen(ctx, "v", "x"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
	if _, err := s.SeenIDs(ctx, "v"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}
