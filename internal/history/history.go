// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	seenKeyPrefix  = "seen:"
	prefsKeyPrefix = "prefs:"
)

// Errors returned by the history store.
var (
	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("history store is closed")

	// ErrPreferencesNotFound is returned for viewers with no learned preferences.
	ErrPreferencesNotFound = errors.New("viewer preferences not found")
)

// Store is the BadgerDB-backed watch-history and preference store.
type Store struct {
	db        *badger.DB
	retention time.Duration
	closed    bool
}

// Open creates (or opens) the history store per the configuration.
func Open(cfg *config.HistoryConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:        db,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("retention_days", cfg.RetentionDays).
		Msg("History store opened")

	return s, nil
}

// MarkSeen records that a viewer watched a video. The entry carries the
// store's retention TTL, so expired history re-admits videos automatically.
func (s *Store) MarkSeen(ctx context.Context, viewerID, videoID string) error {
	if s.closed {
		return ErrStoreClosed
	}

	key := []byte(seenKeyPrefix + viewerID + ":" + videoID)
	value := []byte(strconv.FormatInt(time.Now().Unix(), 10))

	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, value).WithTTL(s.retention)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}

	metrics.HistoryWrites.Inc()
	return nil
}

// SeenIDs returns all video IDs the viewer has watched within retention.
func (s *Store) SeenIDs(ctx context.Context, viewerID string) ([]string, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}

	prefix := []byte(seenKeyPrefix + viewerID + ":")
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys only
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list seen ids: %w", err)
	}

	return ids, nil
}

// ViewedCount returns the number of videos the viewer has watched within
// retention.
func (s *Store) ViewedCount(ctx context.Context, viewerID string) (int, error) {
	ids, err := s.SeenIDs(ctx, viewerID)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// HasSeen reports whether the viewer has watched the given video.
func (s *Store) HasSeen(ctx context.Context, viewerID, videoID string) (bool, error) {
	if s.closed {
		return false, ErrStoreClosed
	}

	key := []byte(seenKeyPrefix + viewerID + ":" + videoID)
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return true, nil
}

// RunGC triggers BadgerDB value-log garbage collection.
// This should be called periodically to reclaim space.
func (s *Store) RunGC() error {
	if s.closed {
		return ErrStoreClosed
	}

	// Value-log GC does not apply to in-memory databases.
	if s.db.Opts().InMemory {
		return nil
	}

	// Run GC until no more cleanup is possible
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			metrics.HistoryGCRuns.WithLabelValues("noop").Inc()
			return nil
		}
		if err != nil {
			metrics.HistoryGCRuns.WithLabelValues("error").Inc()
			return fmt.Errorf("run GC: %w", err)
		}
		metrics.HistoryGCRuns.WithLabelValues("reclaimed").Inc()
	}
}

// Close closes the underlying BadgerDB.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	logging.Debug().Msg("Closing history store")
	return s.db.Close()
}
