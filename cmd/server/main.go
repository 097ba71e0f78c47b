// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package main is the entry point for the WatchWhat server.
//
// WatchWhat is a self-hosted, single-user recommendation engine for movies,
// TV series, and books. It builds a taste profile from the user's synced
// consumption history, filters the local catalog into a candidate pool,
// scores candidates against the parsed query intent, and optionally reranks
// the shortlist with an LLM. When the LLM is unsure it may ask exactly one
// clarifying question before answering.
//
// Startup order:
//
//  1. Configuration: koanf v2 layered over defaults, config file, env vars
//  2. Logging: zerolog, JSON by default
//  3. Storage: SQLite history and catalog store
//  4. Sessions: in-memory or badger-backed clarification sessions
//  5. LLM client: optional; absent API key means local-only ranking
//  6. Supervisor tree: session maintenance plus the HTTP server
//
// The LLM reranker is optional. Without LLM_API_KEY the engine serves the
// locally scored shortlist and never asks clarifying questions.
//
// Graceful shutdown on SIGINT/SIGTERM drains in-flight requests, stops the
// supervised services, and closes the stores.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/cocodzh/watchwhat/internal/api"
	"github.com/cocodzh/watchwhat/internal/config"
	"github.com/cocodzh/watchwhat/internal/llm"
	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/recommend"
	"github.com/cocodzh/watchwhat/internal/store"
	"github.com/cocodzh/watchwhat/internal/supervisor"
	"github.com/cocodzh/watchwhat/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("session_backend", cfg.Sessions.Backend).
		Bool("llm_enabled", cfg.LLM.Enabled()).
		Msg("Starting WatchWhat")

	db, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	sessions, memSessions, badgerDB := newSessionStore(cfg)
	if badgerDB != nil {
		defer func() {
			if err := badgerDB.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing session store")
			}
		}()
		tree.AddDataService(services.NewBadgerGCService(badgerDB, 5*time.Minute))
	}
	if memSessions != nil {
		tree.AddDataService(services.NewSweeperService(memSessions, time.Minute))
	}

	// A missing API key is not an error: run local-only.
	var reranker recommend.RerankClient
	client, err := llm.NewClient(cfg.LLM)
	switch {
	case err == nil:
		reranker = client
		logging.Info().Str("model", cfg.LLM.Model).Msg("LLM reranker enabled")
	case errors.Is(err, llm.ErrNotConfigured):
		logging.Info().Msg("LLM reranker not configured, serving local ranking only")
	default:
		logging.Fatal().Err(err).Msg("Failed to initialize LLM client")
	}

	engine := recommend.NewEngine(db, db, reranker, sessions, cfg.Recommend)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewServer(engine, db, cfg).Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Stopped gracefully")
}

// newSessionStore builds the clarification session store from config. The
// memory store needs periodic sweeping; the badger store expires entries by
// TTL but needs value-log GC. Exactly one of the two extra returns is set.
func newSessionStore(cfg *config.Config) (recommend.SessionStore, *recommend.MemorySessionStore, *badger.DB) {
	if cfg.Sessions.Backend == "badger" {
		opts := badger.DefaultOptions(cfg.Sessions.Path).
			WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Sessions.Path).Msg("Failed to open session store")
		}
		return recommend.NewBadgerSessionStore(db), nil, db
	}

	mem := recommend.NewMemorySessionStore()
	return mem, mem, nil
}
