// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/models"
	"github.com/cocodzh/watchwhat/internal/recommend"
)

// RecommendationItem is the flattened wire form of one shortlist entry.
type RecommendationItem struct {
	ExternalID string  `json:"external_id"`
	Title      string  `json:"title"`
	Kind       string  `json:"kind"`
	Year       int     `json:"year,omitempty"`
	URL        string  `json:"url,omitempty"`
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	SeriesKey  string  `json:"series_key"`
}

// RecommendResponse is the envelope for both recommendation endpoints.
type RecommendResponse struct {
	Status           string                       `json:"status"`
	Items            []RecommendationItem         `json:"items"`
	FollowupQuestion string                       `json:"followup_question,omitempty"`
	SessionToken     string                       `json:"session_token,omitempty"`
	ProfileSummary   string                       `json:"profile_summary,omitempty"`
	Applied          recommend.AppliedConstraints `json:"applied_constraints"`
	Confidence       float64                      `json:"confidence"`
	RequestID        string                       `json:"request_id,omitempty"`
}

// libraryResponse is the envelope for GET /api/v1/library.
type libraryResponse struct {
	Items  []libraryItem `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// libraryItem is the wire form of one consumed item.
type libraryItem struct {
	ExternalID string   `json:"external_id"`
	Title      string   `json:"title"`
	Kind       string   `json:"kind"`
	Rating     *float64 `json:"rating,omitempty"`
	ConsumedAt string   `json:"consumed_at,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	URL        string   `json:"url,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func historyToWire(items []models.HistoryItem) []libraryItem {
	wire := make([]libraryItem, 0, len(items))
	for _, h := range items {
		li := libraryItem{
			ExternalID: h.ExternalID,
			Title:      h.Title,
			Kind:       string(h.Kind),
			Rating:     h.Rating,
			Tags:       h.Tags,
			URL:        h.URL,
		}
		if h.ConsumedAt != nil {
			li.ConsumedAt = h.ConsumedAt.Format(time.RFC3339)
		}
		wire = append(wire, li)
	}
	return wire
}

// ErrorResponse is the envelope for non-2xx replies.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func outcomeToResponse(outcome *recommend.Outcome) RecommendResponse {
	resp := RecommendResponse{
		Status:           outcome.Status.String(),
		Items:            make([]RecommendationItem, 0, len(outcome.Items)),
		FollowupQuestion: outcome.FollowupQuestion,
		SessionToken:     outcome.SessionToken,
		ProfileSummary:   outcome.ProfileSummary,
		Applied:          outcome.Applied,
		Confidence:       outcome.Confidence,
		RequestID:        outcome.RequestID,
	}
	for _, item := range outcome.Items {
		resp.Items = append(resp.Items, RecommendationItem{
			ExternalID: item.Candidate.Item.ExternalID,
			Title:      item.Candidate.DisplayTitle,
			Kind:       string(item.Candidate.Item.Kind),
			Year:       item.Candidate.Item.Year,
			URL:        item.Candidate.Item.URL,
			Rank:       item.Rank,
			Score:      item.Score,
			Reason:     item.Justification,
			SeriesKey:  item.Candidate.SeriesKey,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, ErrorResponse{
		Error:     message,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}
