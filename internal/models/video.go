// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package models

import (
	"fmt"
	"time"
)

// MediaKind is a closed variant type for media renditions.
// Video sources come in three flavors and selection between them is an
// explicit policy, never string sniffing on URLs.
type MediaKind int

const (
	// MediaRaw is the original upload, always present.
	MediaRaw MediaKind = iota
	// MediaOptimized is the transcoded fast-delivery rendition.
	MediaOptimized
	// MediaAdaptive is an adaptive-bitrate streaming manifest.
	MediaAdaptive
)

// String returns a human-readable name for the media kind.
func (k MediaKind) String() string {
	switch k {
	case MediaRaw:
		return "raw"
	case MediaOptimized:
		return "optimized"
	case MediaAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so MediaKind serializes
// as its name in JSON output.
func (k MediaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so MediaKind parses
// back from the name produced by MarshalText.
func (k *MediaKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "raw":
		*k = MediaRaw
	case "optimized":
		*k = MediaOptimized
	case "adaptive":
		*k = MediaAdaptive
	default:
		return fmt.Errorf("unknown media kind %q", text)
	}
	return nil
}

// MediaRef points at one rendition of a video's media.
type MediaRef struct {
	// Kind identifies the rendition variant.
	Kind MediaKind `json:"kind"`

	// URL is the playback location for this rendition.
	URL string `json:"url"`
}

// Video is the catalog metadata for one video, including the engagement
// counters the feed engine scores on. The engine treats this as an
// immutable snapshot for the duration of one ranking pass.
type Video struct {
	// ID is the unique video identifier.
	ID string `json:"id"`

	// CreatorID identifies the uploading creator.
	CreatorID string `json:"creator_id"`

	// Title is the display title.
	Title string `json:"title"`

	// MediaRefs lists the available renditions.
	MediaRefs []MediaRef `json:"media_refs"`

	// ViewCount is the total view counter.
	ViewCount int64 `json:"view_count"`

	// LikeCount is the total like counter.
	LikeCount int64 `json:"like_count"`

	// CommentCount is the total comment counter.
	CommentCount int64 `json:"comment_count"`

	// Tags is the set of category tags attached at upload time.
	Tags []string `json:"tags"`

	// CreatedAt is the upload timestamp.
	CreatedAt time.Time `json:"created_at"`

	// HasFastDelivery reports whether the optimized rendition is ready.
	HasFastDelivery bool `json:"-"`
}

// SelectMediaRef picks the rendition to surface for playback.
// Policy: adaptive when available, otherwise optimized when fast delivery
// is ready, otherwise the raw upload. Returns false when no refs exist.
func SelectMediaRef(refs []MediaRef, hasFastDelivery bool) (MediaRef, bool) {
	var raw, optimized, adaptive *MediaRef
	for i := range refs {
		switch refs[i].Kind {
		case MediaAdaptive:
			adaptive = &refs[i]
		case MediaOptimized:
			optimized = &refs[i]
		case MediaRaw:
			raw = &refs[i]
		}
	}

	switch {
	case adaptive != nil:
		return *adaptive, true
	case optimized != nil && hasFastDelivery:
		return *optimized, true
	case raw != nil:
		return *raw, true
	default:
		return MediaRef{}, false
	}
}
