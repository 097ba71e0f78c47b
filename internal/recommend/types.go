// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"context"
	"time"

	"github.com/cocodzh/watchwhat/internal/models"
)

// Candidate is an unseen catalog item eligible for scoring. Request-scoped.
type Candidate struct {
	// Item is the underlying catalog entry.
	Item models.CatalogItem `json:"item"`

	// SeriesKey groups volumes/seasons/regional editions of the same work.
	SeriesKey string `json:"series_key"`

	// DisplayTitle is the canonical series title used in responses.
	DisplayTitle string `json:"display_title"`

	// ReasonTags are the candidate's genre/topic tags, matched against the
	// history tag distribution and intent preferences by the scorer.
	ReasonTags []string `json:"reason_tags,omitempty"`
}

// ScoredCandidate is a candidate with its local relevance score. Derived,
// transient.
type ScoredCandidate struct {
	Candidate Candidate `json:"candidate"`

	// LocalScore is the scorer's relevance score. Scores are comparable
	// within one request only.
	LocalScore float64 `json:"local_score"`

	// ViolatedConstraints names the hard constraints this candidate violates
	// ("kind", "max_runtime", "exclude_genre:horror"). Violators are kept and
	// penalized, not dropped: the reranker may still surface one with a
	// justification explaining the tradeoff.
	ViolatedConstraints []string `json:"violated_constraints,omitempty"`
}

// Violates reports whether the candidate violates any hard constraint.
func (s ScoredCandidate) Violates() bool {
	return len(s.ViolatedConstraints) > 0
}

// Recommendation is one entry of the final ranked shortlist.
type Recommendation struct {
	Candidate Candidate `json:"candidate"`

	// Rank is the 1-based position in the shortlist.
	Rank int `json:"rank"`

	// Score is the score behind this rank: the model's when the reranker
	// succeeded, the local score otherwise.
	Score float64 `json:"score"`

	// Justification is a short natural-language reason for the pick.
	Justification string `json:"justification"`
}

// AppliedConstraints reports which constraints shaped the result, echoed in
// every response so the front end can explain the filtering.
type AppliedConstraints struct {
	// StrictKinds lists the enforced media kinds, sorted. Empty means all.
	StrictKinds []string `json:"strict_kinds"`

	// SeriesGrouping is always true: one representative per series.
	SeriesGrouping bool `json:"series_grouping"`

	// SeriesDeduped counts candidates dropped as duplicate series entries.
	SeriesDeduped int `json:"series_deduped"`
}

// Status tags the outcome of a recommendation request.
type Status int

const (
	// StatusDone means Items holds the final shortlist.
	StatusDone Status = iota
	// StatusNeedFollowup means one clarifying question must be answered via
	// AnswerClarification before a shortlist is produced.
	StatusNeedFollowup
	// StatusEmptyPool means the user has seen everything in the catalog.
	StatusEmptyPool
	// StatusExpired means the clarification session was unknown or expired
	// and the caller must restart from a fresh Recommend call.
	StatusExpired
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusDone:
		return "ok"
	case StatusNeedFollowup:
		return "need_followup"
	case StatusEmptyPool:
		return "empty_pool"
	case StatusExpired:
		return "must_restart"
	default:
		return "unknown"
	}
}

// Request is one recommendation request.
type Request struct {
	// Query is the free-text intent ("something light, under 2 hours").
	// May be empty: no preference expressed.
	Query string `json:"query"`

	// Kind optionally restricts candidates to one media kind.
	Kind models.MediaKind `json:"kind,omitempty"`

	// TopK is the number of recommendations to return. Defaults to
	// Config.DefaultK, capped at Config.MaxK.
	TopK int `json:"top_k,omitempty"`

	// AllowFollowup permits one clarifying question for this request.
	AllowFollowup bool `json:"allow_followup"`

	// RequestID is a unique identifier for tracing. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Outcome is the tagged result of Recommend or AnswerClarification.
type Outcome struct {
	Status Status `json:"-"`

	// Items is the ranked shortlist, present when Status is StatusDone.
	Items []Recommendation `json:"items"`

	// FollowupQuestion is set when Status is StatusNeedFollowup.
	FollowupQuestion string `json:"followup_question,omitempty"`

	// SessionToken identifies the pending clarification, set alongside
	// FollowupQuestion.
	SessionToken string `json:"session_token,omitempty"`

	// ProfileSummary is the compact history profile used for reranking.
	ProfileSummary string `json:"profile_summary,omitempty"`

	// Applied echoes the constraints that shaped this result.
	Applied AppliedConstraints `json:"applied_constraints"`

	// Confidence is the reranker's batch confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// RequestID traces the request through logs.
	RequestID string `json:"request_id,omitempty"`
}

// HistoryProvider supplies the user's synced history. Implemented by the
// storage collaborator.
type HistoryProvider interface {
	// GetHistory returns history items, optionally filtered by kind
	// (empty kind means all). Data may be stale or partial; the pipeline
	// tolerates both.
	GetHistory(ctx context.Context, kind models.MediaKind) ([]models.HistoryItem, error)
}

// CatalogProvider supplies candidate catalog pages. Implemented by the
// storage collaborator.
type CatalogProvider interface {
	// GetCatalogPage returns up to limit items after cursor (keyset
	// pagination; empty cursor starts from the beginning) and the cursor for
	// the next page, or "" when the catalog is exhausted.
	GetCatalogPage(ctx context.Context, kind models.MediaKind, cursor string, limit int) ([]models.CatalogItem, string, error)
}

// RerankCandidate is the compact candidate representation sent to the LLM.
type RerankCandidate struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Year      int    `json:"year,omitempty"`
	SeriesKey string `json:"series_key,omitempty"`
}

// RerankRequest is the single structured exchange handed to the LLM client.
// It carries aggregate history signals only, never raw history rows.
type RerankRequest struct {
	// Query is the user's intent text (merged with any clarification answer).
	Query string `json:"query"`

	// ProfileSummary is the compact per-kind rating/liked-titles summary.
	ProfileSummary string `json:"profile_summary"`

	// StrictKinds lists kinds the model must not step outside of.
	StrictKinds []string `json:"strict_kinds"`

	// AllowFollowup tells the model whether suggesting a follow-up question
	// is useful this turn.
	AllowFollowup bool `json:"allow_followup"`

	// Candidates is the top-K shortlist in local-score order.
	Candidates []RerankCandidate `json:"candidates"`
}

// RankedChoice is one model-ranked candidate.
type RankedChoice struct {
	// ID references a RerankCandidate.ID from the request.
	ID string `json:"id"`

	// Score is the model's relevance score, clamped to [0, 1].
	Score float64 `json:"score"`

	// Reason is a short justification.
	Reason string `json:"reason"`
}

// RerankOutcome is the parsed model response for one exchange.
type RerankOutcome struct {
	// Confidence is the model's batch confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// FollowupQuestion is the model's suggested clarifying question, if any.
	FollowupQuestion string `json:"followup_question,omitempty"`

	// Ranked is the model's ordering. May be a subset of the request
	// candidates; unknown IDs are ignored by the caller.
	Ranked []RankedChoice `json:"ranked"`
}

// RerankClient performs the external LLM exchange. Implemented by the llm
// package; any returned error is treated as ErrRerankerUnavailable by the
// pipeline.
type RerankClient interface {
	Rerank(ctx context.Context, req RerankRequest) (*RerankOutcome, error)
}

// Session is the state preserved between a follow-up question and its
// answer: the original query, the candidate pool snapshot, and the profile,
// so the second pass re-scores without rebuilding.
type Session struct {
	// Token is the opaque session identifier handed to the front end.
	Token string `json:"token"`

	// Query is the original intent text.
	Query string `json:"query"`

	// Question is the follow-up question that was asked.
	Question string `json:"question"`

	// TopK is the original request's shortlist size.
	TopK int `json:"top_k"`

	// Kind is the original request's kind filter.
	Kind models.MediaKind `json:"kind,omitempty"`

	// Pool is the candidate pool snapshot.
	Pool []Candidate `json:"pool"`

	// Profile is the history profile snapshot.
	Profile *Profile `json:"profile"`

	// SeriesDeduped carries the builder's dedupe count into the second pass.
	SeriesDeduped int `json:"series_deduped"`

	// CreatedAt is when the question was asked.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the pending clarification lapses.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has lapsed at time now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionStore persists pending clarification sessions keyed by token.
// Implementations must be safe for concurrent use and must treat expired
// sessions as absent.
type SessionStore interface {
	// Put stores a session until its expiry.
	Put(ctx context.Context, session *Session) error

	// Get returns the session for token. Returns ErrClarificationExpired for
	// unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}
