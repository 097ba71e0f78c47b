// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import "errors"

// Sentinel errors of the recommendation pipeline. Only ErrNoHistory and
// storage errors abort a request; everything else maps to a non-failure
// Outcome or is recovered internally.
var (
	// ErrEmptyCandidatePool indicates the catalog was exhausted without
	// yielding a single unseen candidate. Surfaced to the user as an
	// empty-pool outcome, not a failure.
	ErrEmptyCandidatePool = errors.New("no unseen candidates available")

	// ErrRerankerUnavailable indicates the external rerank exchange failed
	// (timeout, transport error, malformed response). Recovered internally by
	// falling back to the local ordering; never surfaced to the caller.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrClarificationExpired indicates an unknown or expired clarification
	// session token. The caller must restart from a fresh request.
	ErrClarificationExpired = errors.New("clarification session expired")

	// ErrNoHistory indicates the user has no synced history to recommend
	// from. The sync collaborator must run first.
	ErrNoHistory = errors.New("no synced history for user")
)
