// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Weights controls how the scorer blends its signals. The four weights
// should sum to roughly 1.0; Validate enforces a tolerance rather than
// exactness so hand-edited configs don't fail on float noise.
type Weights struct {
	// Tags weighs overlap between candidate tags and the history tag
	// distribution plus intent preferences.
	Tags float64 `koanf:"tags" json:"tags"`

	// Constraints weighs agreement with parsed soft constraints.
	Constraints float64 `koanf:"constraints" json:"constraints"`

	// Rating weighs the candidate's community rating prior.
	Rating float64 `koanf:"rating" json:"rating"`

	// Recency weighs release-year proximity when the intent asks for
	// recent works.
	Recency float64 `koanf:"recency" json:"recency"`
}

// Config holds the pipeline tuning knobs.
type Config struct {
	// DefaultK is the shortlist size when the request does not specify one.
	DefaultK int `koanf:"default_k" json:"default_k"`

	// MaxK caps the requested shortlist size.
	MaxK int `koanf:"max_k" json:"max_k"`

	// TopKRerank is how many scored candidates are sent to the reranker.
	TopKRerank int `koanf:"top_k_rerank" json:"top_k_rerank"`

	// TargetPool is the candidate pool size the builder aims for before
	// it stops paging the catalog.
	TargetPool int `koanf:"target_pool" json:"target_pool"`

	// PageSize is the catalog page size used while building the pool.
	PageSize int `koanf:"page_size" json:"page_size"`

	// ConfidenceThreshold is the reranker confidence below which a
	// follow-up question is asked (when the request allows one).
	ConfidenceThreshold float64 `koanf:"confidence_threshold" json:"confidence_threshold"`

	// HardViolationPenalty is the multiplicative score penalty applied to
	// candidates that violate a hard constraint. 0 drops them outright,
	// 1 disables the penalty.
	HardViolationPenalty float64 `koanf:"hard_violation_penalty" json:"hard_violation_penalty"`

	// SessionTTL is how long a pending clarification stays answerable.
	SessionTTL time.Duration `koanf:"session_ttl" json:"session_ttl"`

	// FallbackCatalog enables the built-in editorial catalog when the
	// primary catalog has no rows at all.
	FallbackCatalog bool `koanf:"fallback_catalog" json:"fallback_catalog"`

	// Weights blends the scorer signals.
	Weights Weights `koanf:"weights" json:"weights"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultK:             20,
		MaxK:                 100,
		TopKRerank:           10,
		TargetPool:           200,
		PageSize:             100,
		ConfidenceThreshold:  0.5,
		HardViolationPenalty: 0.6,
		SessionTTL:           5 * time.Minute,
		FallbackCatalog:      true,
		Weights: Weights{
			Tags:        0.35,
			Constraints: 0.25,
			Rating:      0.25,
			Recency:     0.15,
		},
	}
}

// Validate checks the configuration for internally consistent values.
func (c Config) Validate() error {
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be at least 1, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k (%d) must be at least default_k (%d)", c.MaxK, c.DefaultK)
	}
	if c.TopKRerank < 1 {
		return fmt.Errorf("top_k_rerank must be at least 1, got %d", c.TopKRerank)
	}
	if c.TargetPool < c.TopKRerank {
		return fmt.Errorf("target_pool (%d) must be at least top_k_rerank (%d)", c.TargetPool, c.TopKRerank)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", c.PageSize)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0, 1], got %g", c.ConfidenceThreshold)
	}
	if c.HardViolationPenalty < 0 || c.HardViolationPenalty > 1 {
		return fmt.Errorf("hard_violation_penalty must be in [0, 1], got %g", c.HardViolationPenalty)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	sum := c.Weights.Tags + c.Weights.Constraints + c.Weights.Rating + c.Weights.Recency
	if math.Abs(sum-1.0) > 0.05 {
		return fmt.Errorf("scoring weights must sum to 1.0 (±0.05), got %g", sum)
	}
	for name, w := range map[string]float64{
		"tags":        c.Weights.Tags,
		"constraints": c.Weights.Constraints,
		"rating":      c.Weights.Rating,
		"recency":     c.Weights.Recency,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %g", name, w)
		}
	}
	return nil
}
