// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/validation"
)

// feedQuery is the parsed and validated feed request.
type feedQuery struct {
	ViewerID string `validate:"omitempty,max=128"`
	Page     int    `validate:"gte=0"`
	PageSize int    `validate:"gte=1"`
	Fast     bool
}

// parseFeedQuery extracts feed parameters from the request. Parse and
// validation failures are returned as user-facing messages; nothing here
// touches a store.
func parseFeedQuery(r *http.Request, cfg *config.APIConfig) (*feedQuery, error) {
	q := r.URL.Query()

	query := &feedQuery{
		ViewerID: q.Get("viewer_id"),
		PageSize: cfg.DefaultPageSize,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("page must be an integer, got %q", raw)
		}
		query.Page = page
	}

	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("page_size must be an integer, got %q", raw)
		}
		query.PageSize = size
	}

	if raw := q.Get("fast"); raw != "" {
		fast, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("fast must be a boolean, got %q", raw)
		}
		query.Fast = fast
	}

	if err := validation.ValidateStruct(query); err != nil {
		return nil, err
	}
	if query.PageSize > cfg.MaxPageSize {
		return nil, fmt.Errorf("page_size must not exceed %d", cfg.MaxPageSize)
	}
	return query, nil
}

// engagementBody is the optional JSON body of an engagement POST.
type engagementBody struct {
	ViewerID string `json:"viewer_id" validate:"omitempty,max=128"`
}
