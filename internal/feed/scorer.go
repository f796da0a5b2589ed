// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/tomtom215/clipfeed/internal/models"
)

// Scoring weights. Affinity dominates (0-40), engagement and recency follow,
// quality, the new-tag bonus, and exploration add smaller nudges. The viewed
// penalty is large enough to push any already-watched video below every
// unwatched one while keeping seen videos mutually ordered.
const (
	affinityMax      = 40.0
	coldStartScore   = 10.0
	engagementMax    = 25.0
	engagementScale  = 3.0
	likeWeight       = 5.0
	commentWeight    = 10.0
	qualityMax       = 10.0
	qualityScale     = 20.0
	diversityBonus   = 5.0
	explorationRange = 5.0
	viewedPenalty    = -200.0
)

// Recency decay steps, newest to oldest.
var recencySteps = []struct {
	maxAge time.Duration
	score  float64
}{
	{24 * time.Hour, 20},
	{3 * 24 * time.Hour, 15},
	{7 * 24 * time.Hour, 10},
	{14 * 24 * time.Hour, 5},
}

// scorer computes composite scores for a single request. The random source
// is request-scoped so concurrent requests never contend, and tests can
// inject a fixed seed for deterministic runs.
type scorer struct {
	vctx *ViewerContext
	rng  *rand.Rand
	now  time.Time
}

func newScorer(vctx *ViewerContext, rng *rand.Rand, now time.Time) *scorer {
	return &scorer{vctx: vctx, rng: rng, now: now}
}

// scoreAll scores the pool and returns it ordered best first. Ties break by
// recency, then ID, so ordering is stable across identical inputs.
func (s *scorer) scoreAll(pool []models.Video) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(pool))
	for i := range pool {
		scored = append(scored, ScoredCandidate{
			Video: pool[i],
			Score: s.score(&pool[i]),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Video.CreatedAt.Equal(scored[j].Video.CreatedAt) {
			return scored[i].Video.CreatedAt.After(scored[j].Video.CreatedAt)
		}
		return scored[i].Video.ID < scored[j].Video.ID
	})

	return scored
}

// score computes the composite score for one candidate.
func (s *scorer) score(v *models.Video) float64 {
	total := s.affinityScore(v) +
		engagementScore(v) +
		s.recencyScore(v) +
		qualityScore(v) +
		s.noveltyBonus(v) +
		s.rng.Float64()*explorationRange

	if s.vctx.ExclusionWaived && s.vctx.HasSeen(v.ID) {
		total += viewedPenalty
	}
	return total
}

// affinityScore is the mean affinity over the candidate's tags, scaled to
// affinityMax. Viewers with no affinity data at all get a flat cold-start
// score so unknown tastes neither dominate nor vanish.
func (s *scorer) affinityScore(v *models.Video) float64 {
	if len(s.vctx.TagAffinity) == 0 {
		return coldStartScore
	}
	if len(v.Tags) == 0 {
		return 0
	}

	var sum float64
	for _, tag := range v.Tags {
		sum += s.vctx.TagAffinity[tag]
	}
	return sum / float64(len(v.Tags)) * affinityMax
}

// engagementScore grows logarithmically with weighted interaction volume,
// capped so viral videos cannot drown out personalization.
func engagementScore(v *models.Video) float64 {
	weighted := float64(v.ViewCount) +
		likeWeight*float64(v.LikeCount) +
		commentWeight*float64(v.CommentCount)
	return math.Min(engagementMax, engagementScale*math.Log(1+weighted))
}

// recencyScore steps down with age rather than decaying continuously, so
// same-day uploads rank as peers instead of by upload minute.
func (s *scorer) recencyScore(v *models.Video) float64 {
	age := s.now.Sub(v.CreatedAt)
	for _, step := range recencySteps {
		if age < step.maxAge {
			return step.score
		}
	}
	return 0
}

// qualityScore is capped engagement-per-view, guarding the division for
// videos that have likes before their first counted view.
func qualityScore(v *models.Video) float64 {
	views := v.ViewCount
	if views < 1 {
		views = 1
	}
	ratio := float64(v.LikeCount+v.CommentCount) / float64(views)
	return math.Min(qualityMax, qualityScale*ratio)
}

// noveltyBonus rewards candidates carrying at least one tag the viewer has
// no recorded affinity for, countering filter-bubble convergence.
func (s *scorer) noveltyBonus(v *models.Video) float64 {
	if len(s.vctx.TagAffinity) == 0 || len(v.Tags) == 0 {
		return 0
	}
	for _, tag := range v.Tags {
		if _, known := s.vctx.TagAffinity[tag]; !known {
			return diversityBonus
		}
	}
	return 0
}
