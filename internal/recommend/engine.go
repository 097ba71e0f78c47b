// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/metrics"
	"github.com/cocodzh/watchwhat/internal/models"
)

// Engine composes the pipeline stages into one request/response cycle:
// build candidates, parse intent, score, rerank, and optionally hold the
// request open for a single clarification turn.
type Engine struct {
	history  HistoryProvider
	catalog  CatalogProvider
	reranker RerankClient
	sessions SessionStore
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

// NewEngine wires the pipeline. reranker may be nil, in which case every
// request is served from the local score order.
func NewEngine(history HistoryProvider, catalog CatalogProvider, reranker RerankClient, sessions SessionStore, cfg Config) *Engine {
	return &Engine{
		history:  history,
		catalog:  catalog,
		reranker: reranker,
		sessions: sessions,
		cfg:      cfg,
		log:      logging.Component("engine"),
		now:      time.Now,
	}
}

// Recommend runs the full pipeline for one request. Collaborator failures
// in the smart layer degrade gracefully; only missing history or an
// unavailable store surface as errors.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Outcome, error) {
	start := e.now()
	requestID := req.RequestID
	if requestID == "" {
		requestID = logging.GenerateRequestID()
	}
	ctx = logging.ContextWithRequestID(ctx, requestID)
	log := e.log.With().Str("request_id", requestID).Logger()

	topK := e.clampTopK(req.TopK)

	history, err := e.history.GetHistory(ctx, "")
	if err != nil {
		metrics.RecordPipeline("failed", e.now().Sub(start))
		return nil, err
	}
	if len(history) == 0 {
		metrics.RecordPipeline("failed", e.now().Sub(start))
		return nil, ErrNoHistory
	}

	profile := BuildProfile(history)
	intent := e.parseIntent(req.Query, req.Kind)
	log.Debug().
		Int("history_items", len(history)).
		Float64("parse_confidence", intent.ParseConfidence).
		Msg("Intent parsed")

	pool, stats, err := buildCandidates(ctx, e.catalog, profile, req.Kind, e.cfg)
	if err != nil && !errors.Is(err, ErrEmptyCandidatePool) {
		metrics.RecordPipeline("failed", e.now().Sub(start))
		return nil, err
	}
	metrics.CandidatePoolSize.Observe(float64(len(pool)))
	metrics.SeriesDeduped.Add(float64(stats.SeriesDeduped))
	if stats.UsedFallback {
		metrics.FallbackCatalogServed.Inc()
	}

	// An exhausted pool is an outcome, not a failure.
	if errors.Is(err, ErrEmptyCandidatePool) {
		log.Info().Int("catalog_scanned", stats.CatalogScanned).Msg("Candidate pool empty")
		outcome := &Outcome{
			Status:         StatusEmptyPool,
			Items:          []Recommendation{},
			ProfileSummary: profile.Summary(),
			Applied:        e.appliedConstraints(intent, stats.SeriesDeduped),
			RequestID:      requestID,
		}
		metrics.RecordPipeline(outcome.Status.String(), e.now().Sub(start))
		return outcome, nil
	}

	outcome := e.rankAndFinish(ctx, rankInput{
		pool:          pool,
		intent:        intent,
		profile:       profile,
		topK:          topK,
		kind:          req.Kind,
		query:         req.Query,
		allowFollowup: req.AllowFollowup,
		seriesDeduped: stats.SeriesDeduped,
		requestID:     requestID,
	})
	metrics.RecordPipeline(outcome.Status.String(), e.now().Sub(start))
	return outcome, nil
}

// AnswerClarification resumes a pending clarification: the answer is merged
// into the original query, the snapshot pool is re-scored and re-ranked
// exactly once, and the session is consumed. The follow-up turn is never
// offered again regardless of the resulting confidence.
func (e *Engine) AnswerClarification(ctx context.Context, token, answer string) (*Outcome, error) {
	start := e.now()
	requestID := logging.GenerateRequestID()
	ctx = logging.ContextWithRequestID(ctx, requestID)

	session, err := e.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrClarificationExpired) {
			e.log.Info().Str("request_id", requestID).Msg("Clarification session unknown or expired")
			outcome := &Outcome{Status: StatusExpired, Items: []Recommendation{}, RequestID: requestID}
			metrics.RecordPipeline(outcome.Status.String(), e.now().Sub(start))
			return outcome, nil
		}
		metrics.RecordPipeline("failed", e.now().Sub(start))
		return nil, err
	}
	// Single use: the session is gone even if this pass fails.
	if err := e.sessions.Delete(ctx, token); err != nil {
		e.log.Warn().Err(err).Msg("Failed to delete consumed session")
	}
	metrics.ClarificationsAnswered.Inc()

	intent := MergeAnswer(session.Query, answer)
	mergedQuery := intent.RawText
	outcome := e.rankAndFinish(ctx, rankInput{
		pool:          session.Pool,
		intent:        intent,
		profile:       session.Profile,
		topK:          e.clampTopK(session.TopK),
		kind:          session.Kind,
		query:         mergedQuery,
		allowFollowup: false,
		seriesDeduped: session.SeriesDeduped,
		requestID:     requestID,
	})
	metrics.RecordPipeline(outcome.Status.String(), e.now().Sub(start))
	return outcome, nil
}

type rankInput struct {
	pool          []Candidate
	intent        Intent
	profile       *Profile
	topK          int
	kind          models.MediaKind
	query         string
	allowFollowup bool
	seriesDeduped int
	requestID     string
}

// rankAndFinish runs Score then Rerank and either returns the shortlist or
// holds the request open with one follow-up question.
func (e *Engine) rankAndFinish(ctx context.Context, in rankInput) *Outcome {
	log := logging.Ctx(ctx)
	summary := in.profile.Summary()

	scored := scoreCandidates(in.pool, in.intent, in.profile, e.now(), e.cfg)
	shortlist := topK(scored, e.cfg.TopKRerank)
	res, err := rerank(ctx, e.reranker, shortlist, in.intent, summary, in.allowFollowup)
	if errors.Is(err, ErrRerankerUnavailable) {
		log.Warn().Err(err).Msg("Reranker unavailable, serving local order")
	}
	log.Debug().
		Int("shortlist", len(shortlist)).
		Float64("confidence", res.Confidence).
		Bool("fell_back", res.FellBack).
		Msg("Rerank finished")

	applied := e.appliedConstraints(in.intent, in.seriesDeduped)

	if shouldClarify(res.Confidence, e.cfg.ConfidenceThreshold, in.allowFollowup) {
		question := clarifyQuestion(res.FollowupQuestion, in.intent)
		token := uuid.New().String()
		now := e.now()
		session := &Session{
			Token:         token,
			Query:         in.query,
			Question:      question,
			TopK:          in.topK,
			Kind:          in.kind,
			Pool:          in.pool,
			Profile:       in.profile,
			SeriesDeduped: in.seriesDeduped,
			CreatedAt:     now,
			ExpiresAt:     now.Add(e.cfg.SessionTTL),
		}
		if err := e.sessions.Put(ctx, session); err != nil {
			// The shortlist is still usable, so serve it instead of failing.
			log.Warn().Err(err).Msg("Failed to persist clarification session, serving shortlist")
		} else {
			metrics.ClarificationsAsked.Inc()
			return &Outcome{
				Status:           StatusNeedFollowup,
				Items:            []Recommendation{},
				FollowupQuestion: question,
				SessionToken:     token,
				ProfileSummary:   summary,
				Applied:          applied,
				Confidence:       res.Confidence,
				RequestID:        in.requestID,
			}
		}
	}

	items := res.Items
	if len(items) > in.topK {
		items = items[:in.topK]
	}
	for i := range items {
		items[i].Rank = i + 1
	}
	return &Outcome{
		Status:         StatusDone,
		Items:          items,
		ProfileSummary: summary,
		Applied:        applied,
		Confidence:     res.Confidence,
		RequestID:      in.requestID,
	}
}

// parseIntent parses the query and folds the request's kind filter into the
// strict-kind constraint.
func (e *Engine) parseIntent(query string, kind models.MediaKind) Intent {
	intent := ParseIntent(query)
	if kind != "" && !contains(intent.Kinds, kind) {
		intent.Kinds = append(intent.Kinds, kind)
	}
	return intent
}

func (e *Engine) appliedConstraints(intent Intent, seriesDeduped int) AppliedConstraints {
	applied := AppliedConstraints{
		StrictKinds:    []string{},
		SeriesGrouping: true,
		SeriesDeduped:  seriesDeduped,
	}
	for _, kind := range intent.Kinds {
		applied.StrictKinds = append(applied.StrictKinds, string(kind))
	}
	return applied
}

func (e *Engine) clampTopK(k int) int {
	if k <= 0 {
		return e.cfg.DefaultK
	}
	if k > e.cfg.MaxK {
		return e.cfg.MaxK
	}
	return k
}

func contains(kinds []models.MediaKind, kind models.MediaKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
