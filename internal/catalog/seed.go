// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/models"
)

// mock data vocabulary for development deployments
var (
	mockCreators = []string{
		"creator-aurora", "creator-basil", "creator-cosmo", "creator-dune",
		"creator-ember", "creator-fjord", "creator-glint", "creator-haze",
	}
	mockTags = []string{
		"comedy", "cooking", "travel", "music", "sports",
		"diy", "pets", "gaming", "dance", "science",
	}
	mockTitleWords = []string{
		"Unbelievable", "Quick", "Daily", "Hidden", "Ultimate",
		"Tiny", "Epic", "Simple", "Wild", "Cozy",
	}
)

// SeedMockData populates the catalog with synthetic videos for development.
// It is a no-op when the catalog already has rows.
func (s *Store) SeedMockData(ctx context.Context, count int) error {
	existing, err := s.TotalCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to check catalog before seeding: %w", err)
	}
	if existing > 0 {
		logging.Debug().Int("existing", existing).Msg("Catalog already populated, skipping mock seed")
		return nil
	}

	if count <= 0 {
		count = 200
	}

	// Fixed seed keeps development datasets reproducible across restarts.
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // mock data, not crypto

	now := time.Now()
	for i := 0; i < count; i++ {
		id := uuid.New().String()
		creator := mockCreators[rng.Intn(len(mockCreators))]

		tags := []string{mockTags[rng.Intn(len(mockTags))]}
		if rng.Intn(2) == 0 {
			second := mockTags[rng.Intn(len(mockTags))]
			if second != tags[0] {
				tags = append(tags, second)
			}
		}

		hasFast := rng.Intn(3) > 0 // roughly 2/3 transcoded
		refs := []models.MediaRef{
			{Kind: models.MediaRaw, URL: fmt.Sprintf("https://cdn.clipfeed.dev/raw/%s.mp4", id)},
		}
		if hasFast {
			refs = append(refs, models.MediaRef{
				Kind: models.MediaOptimized,
				URL:  fmt.Sprintf("https://cdn.clipfeed.dev/opt/%s.mp4", id),
			})
		}
		if rng.Intn(4) == 0 {
			refs = append(refs, models.MediaRef{
				Kind: models.MediaAdaptive,
				URL:  fmt.Sprintf("https://cdn.clipfeed.dev/hls/%s/master.m3u8", id),
			})
		}

		views := int64(rng.Intn(100000))
		v := &models.Video{
			ID:              id,
			CreatorID:       creator,
			Title:           fmt.Sprintf("%s %s #%d", mockTitleWords[rng.Intn(len(mockTitleWords))], tags[0], i),
			MediaRefs:       refs,
			ViewCount:       views,
			LikeCount:       int64(rng.Intn(int(views/10 + 1))),
			CommentCount:    int64(rng.Intn(int(views/50 + 1))),
			Tags:            tags,
			CreatedAt:       now.Add(-time.Duration(rng.Intn(30*24)) * time.Hour),
			HasFastDelivery: hasFast,
		}

		if err := s.Upsert(ctx, v); err != nil {
			return fmt.Errorf("failed to seed video %d: %w", i, err)
		}
	}

	logging.Info().Int("count", count).Msg("Seeded catalog with mock videos")
	return nil
}
