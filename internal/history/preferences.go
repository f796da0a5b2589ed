// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Interaction weights for preference learning. A comment is a stronger
// signal than a like, which is stronger than a plain view.
const (
	weightView    = 0.5
	weightLike    = 2.0
	weightComment = 3.0

	// maxAffinity caps the learned score per creator or tag.
	maxAffinity = 40.0
)

// ViewerPreferences holds the learned affinity state for one viewer.
type ViewerPreferences struct {
	// CreatorAffinity maps creator ID to accumulated affinity, capped at
	// maxAffinity.
	CreatorAffinity map[string]float64 `json:"creator_affinity"`

	// TagAffinity maps tag to accumulated affinity, capped at maxAffinity.
	TagAffinity map[string]float64 `json:"tag_affinity"`

	// Interactions counts total recorded interactions.
	Interactions int64 `json:"interactions"`

	// UpdatedAt is the last interaction time.
	UpdatedAt time.Time `json:"updated_at"`
}

// newViewerPreferences returns an empty preference state.
func newViewerPreferences() *ViewerPreferences {
	return &ViewerPreferences{
		CreatorAffinity: make(map[string]float64),
		TagAffinity:     make(map[string]float64),
	}
}

// GetPreferences returns the learned preferences for a viewer.
// Returns ErrPreferencesNotFound for viewers with no recorded interactions.
func (s *Store) GetPreferences(ctx context.Context, viewerID string) (*ViewerPreferences, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}

	var prefs ViewerPreferences

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefsKeyPrefix + viewerID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPreferencesNotFound
		}
		if err != nil {
			return fmt.Errorf("get preferences: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prefs)
		})
	})
	if err != nil {
		return nil, err
	}

	return &prefs, nil
}

// SavePreferences stores the full preference state for a viewer.
func (s *Store) SavePreferences(ctx context.Context, viewerID string, prefs *ViewerPreferences) error {
	if s.closed {
		return ErrStoreClosed
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefsKeyPrefix+viewerID), data)
	})
}

// RecordInteraction folds one engagement event into the viewer's learned
// preferences. Unknown kinds are ignored; an unlike partially reverses a
// like's contribution.
func (s *Store) RecordInteraction(ctx context.Context, viewerID, creatorID string, tags []string, kind string) error {
	if s.closed {
		return ErrStoreClosed
	}

	var weight float64
	switch kind {
	case "view":
		weight = weightView
	case "like":
		weight = weightLike
	case "unlike":
		weight = -weightLike
	case "comment":
		weight = weightComment
	default:
		return nil
	}

	prefs, err := s.GetPreferences(ctx, viewerID)
	if errors.Is(err, ErrPreferencesNotFound) {
		prefs = newViewerPreferences()
	} else if err != nil {
		return err
	}

	prefs.CreatorAffinity[creatorID] = clampAffinity(prefs.CreatorAffinity[creatorID] + weight)
	for _, tag := range tags {
		prefs.TagAffinity[tag] = clampAffinity(prefs.TagAffinity[tag] + weight)
	}
	prefs.Interactions++
	prefs.UpdatedAt = time.Now()

	return s.SavePreferences(ctx, viewerID, prefs)
}

// TagAffinity returns the viewer's learned tag affinity normalized to
// [0, 1], the shape the ranking engine scores with. Viewers with no
// recorded interactions get a nil map and nil error; that is cold start,
// not a failure.
func (s *Store) TagAffinity(ctx context.Context, viewerID string) (map[string]float64, error) {
	prefs, err := s.GetPreferences(ctx, viewerID)
	if errors.Is(err, ErrPreferencesNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	normalized := make(map[string]float64, len(prefs.TagAffinity))
	for tag, v := range prefs.TagAffinity {
		normalized[tag] = v / maxAffinity
	}
	return normalized, nil
}

// clampAffinity bounds affinity to [0, maxAffinity].
func clampAffinity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxAffinity {
		return maxAffinity
	}
	return v
}
