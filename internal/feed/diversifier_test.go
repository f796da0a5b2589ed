// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"math/rand"
	"testing"

	"github.com/tomtom215/clipfeed/internal/models"
)

// scoredPool builds a descending-score pool; creators and tags cycle.
func scoredPool(n int, creators, tags []string) []ScoredCandidate {
	pool := make([]ScoredCandidate, n)
	for i := 0; i < n; i++ {
		pool[i] = ScoredCandidate{
			Video: models.Video{
				ID:        "v" + string(rune('a'+i)),
				CreatorID: creators[i%len(creators)],
				Tags:      []string{tags[i%len(tags)]},
			},
			Score: float64(100 - i),
		}
	}
	return pool
}

func idSet(videos []models.Video) map[string]struct{} {
	set := make(map[string]struct{}, len(videos))
	for _, v := range videos {
		set[v.ID] = struct{}{}
	}
	return set
}

// serialDiversifier disables the tier shuffle (tier size 1) so placement
// order is deterministic regardless of the random source.
func serialDiversifier(policy string, creatorWin, tagWin, tagMaxShared int) *diversifier {
	return newDiversifier(1, creatorWin, tagWin, tagMaxShared, policy, rand.New(rand.NewSource(1)))
}

func TestDiversifyPreservesEveryCandidate(t *testing.T) {
	for _, policy := range []string{PolicyDrop, PolicyDefer, PolicyRelax} {
		pool := scoredPool(20, []string{"c1", "c1", "c2"}, []string{"x", "x", "y"})

		out := newDiversifier(5, 3, 3, 2, policy, rand.New(rand.NewSource(42))).diversify(pool)

		if len(out) != len(pool) {
			t.Fatalf("policy %s: %d videos out, want %d", policy, len(out), len(pool))
		}
		seen := idSet(out)
		for _, c := range pool {
			if _, ok := seen[c.Video.ID]; !ok {
				t.Errorf("policy %s: video %s lost in diversification", policy, c.Video.ID)
			}
		}
	}
}

func TestTierShuffleKeepsTierMembership(t *testing.T) {
	pool := scoredPool(12, []string{"c1", "c2", "c3", "c4"}, []string{"w", "x", "y", "z"})
	d := newDiversifier(5, 3, 3, 2, PolicyRelax, rand.New(rand.NewSource(3)))

	shuffled := d.tierShuffle(pool)
	if len(shuffled) != len(pool) {
		t.Fatalf("length changed: %d", len(shuffled))
	}

	// Every candidate must stay within its tier of five.
	for i, c := range shuffled {
		origIdx := -1
		for j := range pool {
			if pool[j].Video.ID == c.Video.ID {
				origIdx = j
				break
			}
		}
		if origIdx/5 != i/5 {
			t.Errorf("candidate %s moved from tier %d to tier %d", c.Video.ID, origIdx/5, i/5)
		}
	}
}

func TestCreatorSpacingDropDemotesToTail(t *testing.T) {
	// Two back-to-back videos by c1, then one by c2. With a creator window
	// of 3, the second c1 video cannot sit next to the first.
	pool := []ScoredCandidate{
		{Video: models.Video{ID: "a1", CreatorID: "c1"}, Score: 3},
		{Video: models.Video{ID: "a2", CreatorID: "c1"}, Score: 2},
		{Video: models.Video{ID: "b1", CreatorID: "c2"}, Score: 1},
	}

	out := serialDiversifier(PolicyDrop, 3, 3, 2).diversify(pool)

	want := []string{"a1", "b1", "a2"}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d = %s, want %s (full order %v)", i, out[i].ID, id, out)
		}
	}
}

func TestCreatorSpacingDeferRetriesAfterPlacement(t *testing.T) {
	// c1, c1, c2, c2, c1: defer should weave the held c1 back in once two
	// non-c1 videos separate it from the first.
	pool := []ScoredCandidate{
		{Video: models.Video{ID: "a1", CreatorID: "c1"}, Score: 5},
		{Video: models.Video{ID: "a2", CreatorID: "c1"}, Score: 4},
		{Video: models.Video{ID: "b1", CreatorID: "c2"}, Score: 3},
		{Video: models.Video{ID: "b2", CreatorID: "c3"}, Score: 2},
		{Video: models.Video{ID: "a3", CreatorID: "c1"}, Score: 1},
	}

	out := serialDiversifier(PolicyDefer, 3, 3, 2).diversify(pool)

	// a2 is held at position 1, then placed as soon as b1 and b2 push c1
	// out of the trailing window.
	want := []string{"a1", "b1", "b2", "a2", "a3"}
	got := make([]string, len(out))
	for i, v := range out {
		got[i] = v.ID
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestCreatorSpacingRelaxKeepsOrder(t *testing.T) {
	pool := []ScoredCandidate{
		{Video: models.Video{ID: "a1", CreatorID: "c1"}, Score: 3},
		{Video: models.Video{ID: "a2", CreatorID: "c1"}, Score: 2},
		{Video: models.Video{ID: "a3", CreatorID: "c1"}, Score: 1},
	}

	out := serialDiversifier(PolicyRelax, 3, 3, 2).diversify(pool)

	for i, want := range []string{"a1", "a2", "a3"} {
		if out[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, out[i].ID, want)
		}
	}
}

func TestTagSpacing(t *testing.T) {
	// Three straight "cats" videos by distinct creators: with at most two
	// of any three consecutive sharing a tag, the third is demoted behind
	// the unrelated video.
	pool := []ScoredCandidate{
		{Video: models.Video{ID: "t1", CreatorID: "c1", Tags: []string{"cats"}}, Score: 4},
		{Video: models.Video{ID: "t2", CreatorID: "c2", Tags: []string{"cats"}}, Score: 3},
		{Video: models.Video{ID: "t3", CreatorID: "c3", Tags: []string{"cats"}}, Score: 2},
		{Video: models.Video{ID: "u1", CreatorID: "c4", Tags: []string{"dogs"}}, Score: 1},
	}

	out := serialDiversifier(PolicyDrop, 3, 3, 2).diversify(pool)

	want := []string{"t1", "t2", "u1", "t3"}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, out[i].ID, id)
		}
	}
}

func TestTagSpacingMultiTagOverlap(t *testing.T) {
	// Overlap through any shared tag counts, not just identical tag sets.
	pool := []ScoredCandidate{
		{Video: models.Video{ID: "m1", CreatorID: "c1", Tags: []string{"cats", "funny"}}, Score: 4},
		{Video: models.Video{ID: "m2", CreatorID: "c2", Tags: []string{"funny", "fails"}}, Score: 3},
		{Video: models.Video{ID: "m3", CreatorID: "c3", Tags: []string{"funny"}}, Score: 2},
		{Video: models.Video{ID: "m4", CreatorID: "c4", Tags: []string{"music"}}, Score: 1},
	}

	out := serialDiversifier(PolicyDrop, 3, 3, 2).diversify(pool)

	if out[2].ID != "m4" {
		t.Errorf("expected m3 demoted for shared 'funny' tag, got order %v", out)
	}
}

func TestDiversifyEmptyPool(t *testing.T) {
	out := serialDiversifier(PolicyDrop, 3, 3, 2).diversify(nil)
	if len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
}
