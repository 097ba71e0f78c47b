// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cocodzh/watchwhat/internal/config"
	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/middleware"
	"github.com/cocodzh/watchwhat/internal/models"
	"github.com/cocodzh/watchwhat/internal/recommend"
)

// Recommender is the pipeline surface the handlers call. Implemented by
// recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Outcome, error)
	AnswerClarification(ctx context.Context, token, answer string) (*recommend.Outcome, error)
}

// LibraryStore is the storage surface for the library view and the health
// probe.
type LibraryStore interface {
	ListLibrary(ctx context.Context, kind models.MediaKind, limit, offset int) ([]models.HistoryItem, int, error)
	Ping(ctx context.Context) error
}

// Server holds the handler dependencies.
type Server struct {
	engine   Recommender
	library  LibraryStore
	cfg      *config.Config
	validate *validator.Validate
	log      zerolog.Logger
}

// NewServer creates the API server.
func NewServer(engine Recommender, library LibraryStore, cfg *config.Config) *Server {
	return &Server{
		engine:   engine,
		library:  library,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logging.Component("api"),
	}
}

// Router assembles the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.Security.RateLimitReqs, s.cfg.Security.RateLimitWindow))
		r.Use(middleware.Prometheus)

		r.Post("/recommend", s.handleRecommend)
		r.Post("/recommend/followup", s.handleFollowup)
		r.Get("/library", s.handleLibrary)
		r.Get("/health", s.handleHealth)
		r.Get("/health/live", s.handleHealthLive)
		r.Get("/health/ready", s.handleHealth)
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}
