// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package config loads and validates the WatchWhat configuration.
//
// Configuration is layered with koanf v2: built-in defaults, then an optional
// YAML config file, then WATCHWHAT_-prefixed environment variables (highest
// priority). Example:
//
//	WATCHWHAT_SERVER_PORT=9090
//	WATCHWHAT_LLM_API_KEY=sk-...
//	WATCHWHAT_RECOMMEND_CONFIDENCE_THRESHOLD=0.6
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/recommend"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	LLM       LLMConfig        `koanf:"llm"`
	Recommend recommend.Config `koanf:"recommend"`
	Sessions  SessionsConfig   `koanf:"sessions"`
	Security  SecurityConfig   `koanf:"security"`
	Logging   logging.Config   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout bounds request read/write on the HTTP server.
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds the SQLite store settings.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for tests.
	Path string `koanf:"path"`
}

// LLMConfig holds the chat-completions reranker client settings.
type LLMConfig struct {
	// BaseURL is the API root, e.g. https://api.deepseek.com/v1.
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests. Empty disables the remote reranker;
	// the pipeline then always uses its local ordering.
	APIKey string `koanf:"api_key"`

	// Model is the chat model identifier.
	Model string `koanf:"model"`

	// Timeout bounds a single rerank exchange.
	Timeout time.Duration `koanf:"timeout"`

	// Temperature is the sampling temperature for the rerank prompt.
	Temperature float64 `koanf:"temperature"`

	// MaxCandidates caps how many candidates are sent in one prompt.
	MaxCandidates int `koanf:"max_candidates"`

	// RequestsPerMinute rate-limits outbound calls. Zero means unlimited.
	RequestsPerMinute int `koanf:"requests_per_minute"`
}

// Enabled reports whether the remote reranker is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// SessionsConfig selects the clarification session store backend.
type SessionsConfig struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend"`

	// Path is the Badger directory, used only when Backend is "badger".
	Path string `koanf:"path"`
}

// SecurityConfig holds API-facing limits.
type SecurityConfig struct {
	// RateLimitReqs is the allowed request count per window per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".watchwhat", "data")

	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8787,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir, "watchwhat.db"),
		},
		LLM: LLMConfig{
			BaseURL:           "https://api.deepseek.com/v1",
			APIKey:            "",
			Model:             "deepseek-chat",
			Timeout:           10 * time.Second,
			Temperature:       0.2,
			MaxCandidates:     80,
			RequestsPerMinute: 30,
		},
		Recommend: recommend.DefaultConfig(),
		Sessions: SessionsConfig{
			Backend: "memory",
			Path:    filepath.Join(dataDir, "sessions"),
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if c.LLM.MaxCandidates <= 0 {
		return fmt.Errorf("llm.max_candidates must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature %f out of range [0, 2]", c.LLM.Temperature)
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must not be negative")
	}
	switch c.Sessions.Backend {
	case "memory", "badger":
	default:
		return fmt.Errorf("sessions.backend %q unknown (memory, badger)", c.Sessions.Backend)
	}
	if c.Sessions.Backend == "badger" && c.Sessions.Path == "" {
		return fmt.Errorf("sessions.path is required for badger backend")
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("security.rate_limit_reqs must be positive")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive")
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}
