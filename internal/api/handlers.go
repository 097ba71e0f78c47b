// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/models"
	"github.com/cocodzh/watchwhat/internal/recommend"
)

const maxRequestBody = 64 << 10 // 64 KiB

// recommendRequest is the wire form of POST /api/v1/recommend. AllowFollowup
// is a pointer so an omitted field defaults to true instead of false.
type recommendRequest struct {
	Query         string `json:"query" validate:"max=2000"`
	Kind          string `json:"kind" validate:"omitempty,oneof=movie tv book"`
	TopK          int    `json:"top_k" validate:"omitempty,min=1,max=100"`
	AllowFollowup *bool  `json:"allow_followup"`
}

func (r recommendRequest) allowFollowup() bool {
	return r.AllowFollowup == nil || *r.AllowFollowup
}

// followupRequest is the wire form of POST /api/v1/recommend/followup.
type followupRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
	Answer       string `json:"answer" validate:"required,max=2000"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	outcome, err := s.engine.Recommend(r.Context(), recommend.Request{
		Query:         req.Query,
		Kind:          models.MediaKind(req.Kind),
		TopK:          req.TopK,
		AllowFollowup: req.allowFollowup(),
		RequestID:     logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		s.recommendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

func (s *Server) handleFollowup(w http.ResponseWriter, r *http.Request) {
	var req followupRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	outcome, err := s.engine.AnswerClarification(r.Context(), req.SessionToken, req.Answer)
	if err != nil {
		s.recommendError(w, r, err)
		return
	}
	status := http.StatusOK
	if outcome.Status == recommend.StatusExpired {
		status = http.StatusGone
	}
	writeJSON(w, r, status, outcomeToResponse(outcome))
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && !models.MediaKind(kind).Valid() {
		writeError(w, r, http.StatusBadRequest, "kind must be one of movie, tv, book")
		return
	}
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		writeError(w, r, http.StatusBadRequest, "offset must not be negative")
		return
	}

	items, total, err := s.library.ListLibrary(r.Context(), models.MediaKind(kind), limit, offset)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Library query failed")
		writeError(w, r, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, libraryResponse{
		Items:  historyToWire(items),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
}

// handleHealthLive is the liveness probe: the process is up, storage state
// does not matter.
func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "alive"})
}

// decodeBody decodes and validates a JSON request body. On failure it writes
// a 400 and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

func (s *Server) recommendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrNoHistory):
		writeError(w, r, http.StatusBadRequest, "no consumption history recorded; import your library first")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation pipeline failed")
		writeError(w, r, http.StatusServiceUnavailable, "recommendation pipeline unavailable")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
