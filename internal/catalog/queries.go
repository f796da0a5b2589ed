// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/clipfeed/internal/metrics"
	"github.com/tomtom215/clipfeed/internal/models"
)

// Sentinel errors returned by catalog queries.
var (
	// ErrVideoNotFound is returned when a video ID does not exist.
	ErrVideoNotFound = errors.New("video not found")

	// ErrUnknownEngagementKind is returned for an unrecognized counter update.
	ErrUnknownEngagementKind = errors.New("unknown engagement kind")
)

// Upsert inserts or updates a video row.
// Engagement counters are taken from the struct on insert and overwritten on
// update; ApplyEngagement is the path for incremental counter changes.
func (s *Store) Upsert(ctx context.Context, v *models.Video) error {
	start := time.Now()

	rawURL, optimizedURL, adaptiveURL := splitMediaRefs(v.MediaRefs)

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO videos (id, creator_id, title, raw_url, optimized_url, adaptive_url,
			has_fast_delivery, view_count, like_count, comment_count, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			creator_id = excluded.creator_id,
			title = excluded.title,
			raw_url = excluded.raw_url,
			optimized_url = excluded.optimized_url,
			adaptive_url = excluded.adaptive_url,
			has_fast_delivery = excluded.has_fast_delivery,
			view_count = excluded.view_count,
			like_count = excluded.like_count,
			comment_count = excluded.comment_count,
			tags = excluded.tags,
			created_at = excluded.created_at`,
		v.ID, v.CreatorID, v.Title, rawURL, optimizedURL, adaptiveURL,
		v.HasFastDelivery, v.ViewCount, v.LikeCount, v.CommentCount,
		joinTags(v.Tags), v.CreatedAt,
	)

	metrics.RecordDBQuery("UPSERT", "videos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to upsert video %s: %w", v.ID, err)
	}
	return nil
}

// GetVideo fetches one video by ID.
func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	start := time.Now()

	row := s.conn.QueryRowContext(ctx, selectColumns+` FROM videos WHERE id = ?`, id)

	v, err := scanVideo(row)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video %s: %w", id, err)
	}
	return v, nil
}

// FetchRecent returns up to limit videos created at or after since, newest
// first, excluding the given IDs. The exclusion runs in SQL so excluded rows
// never reach the candidate pool.
func (s *Store) FetchRecent(ctx context.Context, since time.Time, excluded []string, limit int) ([]models.Video, error) {
	start := time.Now()

	var sb strings.Builder
	sb.WriteString(selectColumns)
	sb.WriteString(` FROM videos WHERE created_at >= ?`)

	args := make([]interface{}, 0, len(excluded)+2)
	args = append(args, since)

	if len(excluded) > 0 {
		sb.WriteString(` AND id NOT IN (`)
		sb.WriteString(placeholders(len(excluded)))
		sb.WriteString(`)`)
		for _, id := range excluded {
			args = append(args, id)
		}
	}

	sb.WriteString(` ORDER BY created_at DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.conn.QueryContext(ctx, sb.String(), args...)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent videos: %w", err)
	}
	defer closeQuietly(rows)

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate video rows: %w", err)
	}

	return videos, nil
}

// TotalCount returns the total number of videos in the catalog.
func (s *Store) TotalCount(ctx context.Context) (int, error) {
	start := time.Now()

	var count int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return count, nil
}

// ApplyEngagement applies one engagement event to a video's counters.
// Supported kinds: view, like, unlike, comment. An unlike never takes the
// like counter below zero.
func (s *Store) ApplyEngagement(ctx context.Context, videoID, kind string) error {
	var set string
	switch kind {
	case "view":
		set = `view_count = view_count + 1`
	case "like":
		set = `like_count = like_count + 1`
	case "unlike":
		set = `like_count = GREATEST(like_count - 1, 0)`
	case "comment":
		set = `comment_count = comment_count + 1`
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngagementKind, kind)
	}

	start := time.Now()
	res, err := s.conn.ExecContext(ctx, `UPDATE videos SET `+set+` WHERE id = ?`, videoID)
	metrics.RecordDBQuery("UPDATE", "videos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to apply %s to video %s: %w", kind, videoID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// SetFastDelivery flips the fast-delivery readiness flag for a video.
// Called when the transcoding pipeline finishes the optimized rendition.
func (s *Store) SetFastDelivery(ctx context.Context, videoID string, ready bool) error {
	start := time.Now()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE videos SET has_fast_delivery = ? WHERE id = ?`, ready, videoID)
	metrics.RecordDBQuery("UPDATE", "videos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to set fast delivery for %s: %w", videoID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// selectColumns is the shared column list for video SELECTs, kept in one
// place so scanVideo stays in sync.
const selectColumns = `SELECT id, creator_id, title, raw_url, optimized_url, adaptive_url,
	has_fast_delivery, view_count, like_count, comment_count, tags, created_at`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVideo scans one video row into a models.Video.
func scanVideo(row rowScanner) (*models.Video, error) {
	var (
		v            models.Video
		rawURL       string
		optimizedURL sql.NullString
		adaptiveURL  sql.NullString
		tags         string
	)

	err := row.Scan(&v.ID, &v.CreatorID, &v.Title, &rawURL, &optimizedURL, &adaptiveURL,
		&v.HasFastDelivery, &v.ViewCount, &v.LikeCount, &v.CommentCount, &tags, &v.CreatedAt)
	if err != nil {
		return nil, err
	}

	v.MediaRefs = assembleMediaRefs(rawURL, optimizedURL.String, adaptiveURL.String)
	v.Tags = splitTags(tags)
	return &v, nil
}

// splitMediaRefs decomposes media refs into the three rendition URL columns.
func splitMediaRefs(refs []models.MediaRef) (raw, optimized, adaptive string) {
	for _, ref := range refs {
		switch ref.Kind {
		case models.MediaRaw:
			raw = ref.URL
		case models.MediaOptimized:
			optimized = ref.URL
		case models.MediaAdaptive:
			adaptive = ref.URL
		}
	}
	return raw, optimized, adaptive
}

// assembleMediaRefs rebuilds the media ref slice from rendition URL columns.
func assembleMediaRefs(raw, optimized, adaptive string) []models.MediaRef {
	refs := make([]models.MediaRef, 0, 3)
	if raw != "" {
		refs = append(refs, models.MediaRef{Kind: models.MediaRaw, URL: raw})
	}
	if optimized != "" {
		refs = append(refs, models.MediaRef{Kind: models.MediaOptimized, URL: optimized})
	}
	if adaptive != "" {
		refs = append(refs, models.MediaRef{Kind: models.MediaAdaptive, URL: adaptive})
	}
	return refs
}

// joinTags serializes tags into the single-column TEXT representation.
// Tags are upload-time category labels and never contain commas.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// splitTags parses the TEXT tag column back into a slice.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
