// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

/*
Package api is the HTTP surface: Chi routing, request parsing and
validation, and the standard response envelope.

Endpoints:

	GET  /api/v1/feed                     ranked or fast feed pages
	GET  /api/v1/videos/{id}              single video with playback rendition
	POST /api/v1/videos/{id}/{kind}       engagement ingestion (202 on accept)
	GET  /api/v1/health[/live|/ready]     probes
	GET  /metrics                         Prometheus scrape

Handlers talk to collaborators through narrow interfaces so tests can run
against in-memory fakes. All responses use the models.APIResponse envelope;
engine and pipeline errors map onto stable machine-readable codes.
*/
package api
