// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

/*
Package feed is the ranking engine: it turns a viewer and a page index into
an ordered page of videos.

The ranked pipeline runs four stages per request:

 1. Context assembly and catalog count, in parallel. The viewer's tag
    affinity and watch history come from the history store.
 2. Exclusion and candidate fetch. Watched videos are excluded in the
    catalog query itself, bounded by a recency window and pool cap, unless
    the catalog is too small or the viewer too thorough, in which case
    exclusion is waived and seen videos instead carry a heavy scoring
    penalty.
 3. Scoring. Composite of tag affinity, log-damped engagement, stepped
    recency, engagement-per-view quality, a novel-tag bonus, and a small
    random exploration term.
 4. Diversification and pagination. Tier shuffle plus creator and tag
    spacing passes, then a plain slice for the requested page.

Failure handling is asymmetric on purpose: a catalog failure is a request
error, while preference or history failures degrade the feed and are
reported in the page's Degraded list. The fast path (page zero with the
fast flag) skips everything but the recency fetch and serves the same page
to every viewer.
*/
package feed
