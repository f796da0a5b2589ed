// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package feed

import (
	"math/rand"

	"github.com/tomtom215/clipfeed/internal/metrics"
	"github.com/tomtom215/clipfeed/internal/models"
)

// Violation policies for the creator and tag spacing passes.
const (
	PolicyDrop  = "drop"  // demote violators to the tail of the ordering
	PolicyDefer = "defer" // retry violators at later positions first
	PolicyRelax = "relax" // keep violators in place, count the violation
)

// diversifier reorders a scored pool so consecutive videos vary in creator
// and topic. Score order is perturbed, never discarded: every candidate
// survives diversification, at worst demoted to the tail.
type diversifier struct {
	tierSize     int
	creatorWin   int
	tagWin       int
	tagMaxShared int
	policy       string
	rng          *rand.Rand
}

func newDiversifier(tierSize, creatorWin, tagWin, tagMaxShared int, policy string, rng *rand.Rand) *diversifier {
	return &diversifier{
		tierSize:     tierSize,
		creatorWin:   creatorWin,
		tagWin:       tagWin,
		tagMaxShared: tagMaxShared,
		policy:       policy,
		rng:          rng,
	}
}

// diversify returns the pool reordered for delivery.
//
// Three stages: shuffle within contiguous score tiers (videos of similar
// quality trade places, a #1 video never falls to #50), then a greedy pass
// enforcing creator and tag spacing, then a fallback fill appending anything
// the spacing pass set aside. The result always contains every input video
// exactly once.
func (d *diversifier) diversify(scored []ScoredCandidate) []models.Video {
	if len(scored) == 0 {
		return nil
	}

	tiered := d.tierShuffle(scored)

	result := make([]models.Video, 0, len(tiered))
	var held []models.Video

	for _, c := range tiered {
		v := c.Video

		constraint := d.violates(result, &v)
		if constraint == "" {
			result = append(result, v)
			d.retryHeld(&result, &held)
			continue
		}

		switch d.policy {
		case PolicyRelax:
			metrics.RecordDiversityViolation(constraint, PolicyRelax)
			result = append(result, v)
		case PolicyDefer:
			metrics.RecordDiversityViolation(constraint, PolicyDefer)
			held = append(held, v)
		default: // PolicyDrop
			metrics.RecordDiversityViolation(constraint, PolicyDrop)
			held = append(held, v)
		}
	}

	// Fallback fill: spacing is best-effort, page size is not. Held videos
	// land at the tail in their original relative order even if they still
	// violate spacing there.
	return append(result, held...)
}

// tierShuffle shuffles each contiguous tier of tierSize candidates
// independently, preserving tier order.
func (d *diversifier) tierShuffle(scored []ScoredCandidate) []ScoredCandidate {
	out := make([]ScoredCandidate, len(scored))
	copy(out, scored)

	for start := 0; start < len(out); start += d.tierSize {
		end := start + d.tierSize
		if end > len(out) {
			end = len(out)
		}
		tier := out[start:end]
		d.rng.Shuffle(len(tier), func(i, j int) {
			tier[i], tier[j] = tier[j], tier[i]
		})
	}
	return out
}

// retryHeld re-attempts deferred videos after each successful placement.
// Only meaningful under PolicyDefer; held stays empty mid-pass otherwise.
func (d *diversifier) retryHeld(result *[]models.Video, held *[]models.Video) {
	if d.policy != PolicyDefer {
		return
	}
	for i := 0; i < len(*held); {
		if d.violates(*result, &(*held)[i]) != "" {
			i++
			continue
		}
		*result = append(*result, (*held)[i])
		*held = append((*held)[:i], (*held)[i+1:]...)
	}
}

// violates reports which spacing constraint placing v at the end of result
// would break: "creator", "tag", or "" for a clean placement.
func (d *diversifier) violates(result []models.Video, v *models.Video) string {
	// Creator spacing: no repeat within a trailing window of creatorWin
	// positions (the candidate itself included).
	for i := len(result) - 1; i >= 0 && i >= len(result)-(d.creatorWin-1); i-- {
		if result[i].CreatorID == v.CreatorID {
			return "creator"
		}
	}

	// Tag spacing: within the trailing tagWin positions, no single tag may
	// appear on more than tagMaxShared videos.
	if len(v.Tags) > 0 {
		counts := make(map[string]int, len(v.Tags))
		for _, tag := range v.Tags {
			counts[tag] = 1
		}
		for i := len(result) - 1; i >= 0 && i >= len(result)-(d.tagWin-1); i-- {
			for _, tag := range result[i].Tags {
				if _, relevant := counts[tag]; relevant {
					counts[tag]++
					if counts[tag] > d.tagMaxShared {
						return "tag"
					}
				}
			}
		}
	}

	return ""
}
