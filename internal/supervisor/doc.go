// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

/*
Package supervisor runs Clipfeed's long-lived components under a suture v4
supervision tree.

Two child supervisors sit under the root: the pipeline layer (engagement
event router, history maintenance loop) and the API layer (HTTP server).
A failing service is restarted with exponential backoff without disturbing
its siblings, so feed serving survives a crash-looping event handler and
vice versa. Supervision events are logged through sutureslog into the
process-wide structured logger.
*/
package supervisor
