// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"context"
	"fmt"

	"github.com/cocodzh/watchwhat/internal/metrics"
)

// fallbackJustification is used when the model supplied no reason or the
// local order is served verbatim.
const fallbackJustification = "close to your highly rated history"

// rerankResult is the reranker stage output.
type rerankResult struct {
	// Items is the final ordering with justifications.
	Items []Recommendation

	// Confidence is the batch confidence driving the clarification gate.
	Confidence float64

	// FollowupQuestion is the model's suggested question, if any.
	FollowupQuestion string

	// FellBack is true when the local order was served instead of the
	// model's.
	FellBack bool
}

// rerank asks the model to reorder and justify the shortlist. Any failure,
// from transport errors to unparseable output, falls back to the local
// order with confidence 0.0 and reports it as ErrRerankerUnavailable;
// reranking never aborts a request, the caller only logs the error. A nil
// client also falls back, but keeps the intent's parse confidence so the
// clarification gate is not forced open on every request.
func rerank(ctx context.Context, client RerankClient, shortlist []ScoredCandidate, intent Intent, profileSummary string, allowFollowup bool) (rerankResult, error) {
	if client == nil {
		return rerankResult{
			Items:      localOrder(shortlist),
			Confidence: intent.ParseConfidence,
			FellBack:   true,
		}, nil
	}

	req := RerankRequest{
		Query:          intent.RawText,
		ProfileSummary: profileSummary,
		AllowFollowup:  allowFollowup,
		Candidates:     make([]RerankCandidate, 0, len(shortlist)),
	}
	for _, kind := range intent.Kinds {
		req.StrictKinds = append(req.StrictKinds, string(kind))
	}
	for _, s := range shortlist {
		req.Candidates = append(req.Candidates, RerankCandidate{
			ID:        s.Candidate.Item.ExternalID,
			Title:     s.Candidate.DisplayTitle,
			Kind:      string(s.Candidate.Item.Kind),
			Year:      s.Candidate.Item.Year,
			SeriesKey: s.Candidate.SeriesKey,
		})
	}

	outcome, err := client.Rerank(ctx, req)
	if err != nil || outcome == nil || len(outcome.Ranked) == 0 {
		metrics.RerankerFallbacks.Inc()
		cause := ErrRerankerUnavailable
		if err != nil {
			cause = fmt.Errorf("%w: %v", ErrRerankerUnavailable, err)
		}
		return rerankResult{
			Items:      localOrder(shortlist),
			Confidence: 0.0,
			FellBack:   true,
		}, cause
	}

	byID := make(map[string]ScoredCandidate, len(shortlist))
	for _, s := range shortlist {
		byID[s.Candidate.Item.ExternalID] = s
	}

	items := make([]Recommendation, 0, len(shortlist))
	used := make(map[string]bool, len(shortlist))
	for _, choice := range outcome.Ranked {
		s, ok := byID[choice.ID]
		if !ok || used[choice.ID] {
			// Hallucinated or repeated IDs are dropped, not fatal.
			continue
		}
		used[choice.ID] = true
		reason := choice.Reason
		if reason == "" {
			reason = fallbackJustification
		}
		items = append(items, Recommendation{
			Candidate:     s.Candidate,
			Rank:          len(items) + 1,
			Score:         clamp01(choice.Score),
			Justification: reason,
		})
	}
	// Candidates the model skipped keep their local order behind its picks.
	for _, s := range shortlist {
		if used[s.Candidate.Item.ExternalID] {
			continue
		}
		items = append(items, Recommendation{
			Candidate:     s.Candidate,
			Rank:          len(items) + 1,
			Score:         s.LocalScore,
			Justification: fallbackJustification,
		})
	}

	if len(items) == 0 {
		metrics.RerankerFallbacks.Inc()
		return rerankResult{Items: localOrder(shortlist), Confidence: 0.0, FellBack: true},
			fmt.Errorf("%w: no usable candidates in reply", ErrRerankerUnavailable)
	}

	return rerankResult{
		Items:            items,
		Confidence:       clamp01(outcome.Confidence),
		FollowupQuestion: outcome.FollowupQuestion,
	}, nil
}

// localOrder converts the scorer's order into recommendations verbatim.
func localOrder(shortlist []ScoredCandidate) []Recommendation {
	items := make([]Recommendation, 0, len(shortlist))
	for i, s := range shortlist {
		items = append(items, Recommendation{
			Candidate:     s.Candidate,
			Rank:          i + 1,
			Score:         s.LocalScore,
			Justification: fallbackJustification,
		})
	}
	return items
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
