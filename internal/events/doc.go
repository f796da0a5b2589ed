// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

/*
Package events is the engagement ingestion pipeline.

The API layer turns interaction requests (view, like, unlike, comment) into
EngagementEvents and hands them to the Publisher, which enforces
per-requester rate limits and event-ID deduplication before publishing to
an in-process Watermill gochannel. A router on the other side retries
transient store failures with backoff and routes exhausted events to a
poison topic; the Processor applies each accepted event to the catalog's
counters and, for identified viewers, the history store's seen set and
learned preferences.

Decoupling ingestion from the request path keeps engagement writes off the
feed-serving latency budget: a POST returns 202 as soon as the event is
admitted.
*/
package events
