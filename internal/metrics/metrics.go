// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package metrics exposes Prometheus instrumentation for the recommendation
// pipeline, the LLM reranker, the HTTP surface, and the SQLite store. All
// collectors are registered on the default registry via promauto and served
// at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics

	PipelineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchwhat_pipeline_requests_total",
			Help: "Total recommendation requests by terminal outcome",
		},
		[]string{"outcome"}, // "ok", "need_followup", "empty_pool", "must_restart", "failed"
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watchwhat_pipeline_duration_seconds",
			Help:    "End-to-end recommendation pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watchwhat_candidate_pool_size",
			Help:    "Unseen candidate pool size after series dedupe",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 200, 400},
		},
	)

	SeriesDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchwhat_series_deduped_total",
			Help: "Candidates dropped as duplicate entries of an emitted series",
		},
	)

	FallbackCatalogServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchwhat_fallback_catalog_served_total",
			Help: "Requests answered from the editorial fallback catalog",
		},
	)

	// Reranker metrics

	RerankerFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchwhat_reranker_fallbacks_total",
			Help: "Rerank attempts that fell back to the local score order",
		},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchwhat_llm_request_duration_seconds",
			Help:    "LLM chat-completion round-trip duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"status"}, // "ok", "error"
	)

	LLMCircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchwhat_llm_circuit_breaker_state",
			Help: "LLM circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Clarification metrics

	ClarificationsAsked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchwhat_clarifications_asked_total",
			Help: "Follow-up questions asked due to low reranker confidence",
		},
	)

	ClarificationsAnswered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchwhat_clarifications_answered_total",
			Help: "Follow-up answers merged back into the pipeline",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchwhat_sessions_expired_total",
			Help: "Clarification sessions discarded after their TTL",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchwhat_sessions_active",
			Help: "Pending clarification sessions awaiting an answer",
		},
	)

	// HTTP metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchwhat_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchwhat_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)

	// Store metrics

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchwhat_db_query_duration_seconds",
			Help:    "SQLite query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchwhat_db_query_errors_total",
			Help: "SQLite query errors by operation",
		},
		[]string{"operation"},
	)
)

// RecordPipeline records one finished pipeline invocation.
func RecordPipeline(outcome string, duration time.Duration) {
	PipelineRequests.WithLabelValues(outcome).Inc()
	PipelineDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordDBQuery records one store query and its outcome.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordLLMRequest records one LLM round trip.
func RecordLLMRequest(duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	LLMRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
}
