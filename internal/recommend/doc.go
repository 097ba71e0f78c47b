// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package recommend implements the recommendation pipeline: given the user's
// synced history, the candidate catalog, and a free-text statement of intent,
// it produces a ranked, justified shortlist of unseen items.
//
// The pipeline runs as one request-scoped pass:
//
//	history + catalog -> CandidateBuilder -> candidate pool
//	intent text       -> ParseIntent      -> structured Intent
//	(pool, intent)    -> Scorer           -> deterministic local ranking
//	(top-K, intent)   -> Reranker         -> LLM-reordered list + confidence
//	low confidence    -> Clarifier        -> one follow-up question, at most
//
// The Engine composes the stages and exposes two operations: Recommend and
// AnswerClarification. Results are a tagged Outcome (done, need-followup,
// empty-pool, must-restart); only infrastructure failures surface as errors.
//
// Failures in the smart layer degrade: a broken or slow LLM exchange falls
// back to the scorer's ordering with zero confidence, never aborting the
// request. Clarification is capped at one turn per request, enforced both by
// the Engine and by single-use session tokens.
//
// This package depends only on models, series, logging, and metrics; the
// storage and LLM collaborators plug in through the HistoryProvider,
// CatalogProvider, RerankClient, and SessionStore interfaces so integration
// never creates circular imports.
package recommend
