// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with user-friendly error messages. It integrates
// with the application's API error format for consistent error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Error translation to human-readable messages
//   - APIError conversion matching the application's error format
//   - WithRequiredStructEnabled for v11 compatibility
//
// # Quick Start
//
//	type FeedQuery struct {
//	    ViewerID string `validate:"omitempty,max=128"`
//	    Page     int    `validate:"gte=1"`
//	    PageSize int    `validate:"gte=1,lte=100"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    req := FeedQuery{...}
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//	}
package validation
