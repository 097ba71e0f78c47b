// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"llm timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"temperature out of range", func(c *Config) { c.LLM.Temperature = 3.0 }},
		{"unknown session backend", func(c *Config) { c.Sessions.Backend = "redis" }},
		{"badger without path", func(c *Config) { c.Sessions.Backend = "badger"; c.Sessions.Path = "" }},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }},
		{"rate window zero", func(c *Config) { c.Security.RateLimitWindow = 0 }},
		{"recommend weights", func(c *Config) { c.Recommend.Weights.Tags = 0.9 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	// The provider hands over full variable names, prefix included.
	tests := []struct {
		in   string
		want string
	}{
		{"WATCHWHAT_SERVER_PORT", "server.port"},
		{"WATCHWHAT_SERVER_HOST", "server.host"},
		{"WATCHWHAT_DATABASE_PATH", "database.path"},
		{"WATCHWHAT_LLM_BASE_URL", "llm.base_url"},
		{"WATCHWHAT_LLM_API_KEY", "llm.api_key"},
		{"WATCHWHAT_RECOMMEND_CONFIDENCE_THRESHOLD", "recommend.confidence_threshold"},
		{"WATCHWHAT_RECOMMEND_WEIGHTS_TAGS", "recommend.weights.tags"},
		{"WATCHWHAT_SESSIONS_BACKEND", "sessions.backend"},
		{"WATCHWHAT_SECURITY_CORS_ORIGINS", "security.cors_origins"},
		{"WATCHWHAT_LOGGING_LEVEL", "logging.level"},
		{"WATCHWHAT_UNRELATED", "unrelated"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("WATCHWHAT_SERVER_PORT", "9999")
	t.Setenv("WATCHWHAT_LLM_API_KEY", "test-key")
	t.Setenv("WATCHWHAT_RECOMMEND_CONFIDENCE_THRESHOLD", "0.7")
	t.Setenv("WATCHWHAT_SECURITY_CORS_ORIGINS", "http://localhost:3000, http://localhost:5173")

	// Run from a directory without a config file so only env overrides apply.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if !cfg.LLM.Enabled() {
		t.Error("llm not enabled despite api key")
	}
	if cfg.Recommend.ConfidenceThreshold != 0.7 {
		t.Errorf("confidence_threshold = %g, want 0.7", cfg.Recommend.ConfidenceThreshold)
	}
	want := []string{"http://localhost:3000", "http://localhost:5173"}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != want[0] || cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("cors_origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("server.timeout = %v, want default 30s", cfg.Server.Timeout)
	}
}
