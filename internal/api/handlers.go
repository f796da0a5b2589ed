// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/clipfeed/internal/catalog"
	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/events"
	"github.com/tomtom215/clipfeed/internal/feed"
	"github.com/tomtom215/clipfeed/internal/logging"
	"github.com/tomtom215/clipfeed/internal/middleware"
	"github.com/tomtom215/clipfeed/internal/models"
	"github.com/tomtom215/clipfeed/internal/validation"
)

// FeedService serves feed pages. Implemented by feed.Engine.
type FeedService interface {
	GetFeed(ctx context.Context, req feed.Request) (*feed.Page, error)
}

// VideoStore reads single videos and answers readiness probes.
// Implemented by catalog.Store.
type VideoStore interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	Ping(ctx context.Context) error
}

// EventPublisher admits engagement events. Implemented by events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, requester string, event *events.EngagementEvent) error
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	feed      FeedService
	videos    VideoStore
	publisher EventPublisher // nil when the events pipeline is disabled
	cfg       *config.APIConfig
	perfMon   *middleware.PerformanceMonitor
	started   time.Time
}

// NewHandler builds the API handler set.
func NewHandler(feedSvc FeedService, videos VideoStore, publisher EventPublisher, cfg *config.APIConfig) *Handler {
	return &Handler{
		feed:      feedSvc,
		videos:    videos,
		publisher: publisher,
		cfg:       cfg,
		perfMon:   middleware.NewPerformanceMonitor(1000), // keep last 1000 requests
		started:   time.Now(),
	}
}

// feedItem is one delivered video plus its selected playback rendition.
type feedItem struct {
	models.Video
	Playback *models.MediaRef `json:"playback,omitempty"`
}

// feedData is the GetFeed response payload.
type feedData struct {
	Items    []feedItem `json:"items"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Path     string     `json:"path"`
	Degraded []string   `json:"degraded,omitempty"`
}

// GetFeed serves GET /api/v1/feed.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	query, err := parseFeedQuery(r, h.cfg)
	if err != nil {
		respondValidationError(w, r, err)
		return
	}

	start := time.Now()
	page, err := h.feed.GetFeed(r.Context(), feed.Request{
		ViewerID: query.ViewerID,
		Page:     query.Page,
		PageSize: query.PageSize,
		FastPath: query.Fast,
	})
	if err != nil {
		h.respondFeedError(w, r, err)
		return
	}

	items := make([]feedItem, 0, len(page.Videos))
	for i := range page.Videos {
		item := feedItem{Video: page.Videos[i]}
		if ref, ok := models.SelectMediaRef(page.Videos[i].MediaRefs, page.Videos[i].HasFastDelivery); ok {
			item.Playback = &ref
		}
		items = append(items, item)
	}

	respondSuccess(w, r, http.StatusOK, &feedData{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Path:     page.Path,
		Degraded: page.Degraded,
	}, time.Since(start), page.Source == "snapshot")
}

// respondFeedError maps engine errors onto the response envelope.
func (h *Handler) respondFeedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feed.ErrInvalidRequest):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, feed.ErrCandidateSourceUnavailable):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Feed request failed: catalog unavailable")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeFeedUnavailable,
			"The feed is temporarily unavailable", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Feed request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal,
			"Internal server error", nil)
	}
}

// GetVideo serves GET /api/v1/videos/{id}.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start := time.Now()
	video, err := h.videos.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrVideoNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Video not found", nil)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("video_id", id).Msg("Video lookup failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
		return
	}

	item := feedItem{Video: *video}
	if ref, ok := models.SelectMediaRef(video.MediaRefs, video.HasFastDelivery); ok {
		item.Playback = &ref
	}
	respondSuccess(w, r, http.StatusOK, &item, time.Since(start), false)
}

// PostEngagement serves POST /api/v1/videos/{id}/{kind}. Accepted events
// return 202; the stores are updated asynchronously by the pipeline.
func (h *Handler) PostEngagement(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeEventsUnavailable,
			"Engagement ingestion is disabled", nil)
		return
	}

	videoID := chi.URLParam(r, "id")
	kind := chi.URLParam(r, "kind")
	if !events.ValidKind(kind) {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation,
			"Unknown engagement kind "+kind, nil)
		return
	}

	var body engagementBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation,
			"Malformed request body", nil)
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	event := events.NewEngagementEvent(body.ViewerID, videoID, kind)
	err := h.publisher.Publish(r.Context(), requesterKey(r, body.ViewerID), event)
	switch {
	case err == nil, errors.Is(err, events.ErrDuplicateEvent):
		// Duplicates are an idempotent accept.
		respondSuccess(w, r, http.StatusAccepted, map[string]string{
			"event_id": event.EventID,
			"video_id": videoID,
			"kind":     kind,
		}, 0, false)
	case errors.Is(err, events.ErrRateLimited):
		respondError(w, r, http.StatusTooManyRequests, ErrCodeRateLimitExceeded,
			"Engagement rate limit exceeded", nil)
	case errors.Is(err, events.ErrInvalidEvent):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Engagement publish failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal,
			"Internal server error", nil)
	}
}

// respondValidationError renders parse and validation failures, including
// per-field details when available.
func respondValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
}

// requesterKey scopes engagement rate limits: by viewer when identified,
// otherwise by client address.
func requesterKey(r *http.Request, viewerID string) string {
	if viewerID != "" {
		return "viewer:" + viewerID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}
