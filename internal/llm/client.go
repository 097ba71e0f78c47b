// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package llm implements the reranker's external collaborator: a
// chat-completions client speaking the DeepSeek-compatible API in JSON
// mode. The client is rate limited and wrapped in a circuit breaker; every
// failure mode surfaces as an error for the pipeline's fallback path.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cocodzh/watchwhat/internal/config"
	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/metrics"
	"github.com/cocodzh/watchwhat/internal/recommend"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("llm: client not configured")

const systemPrompt = `You are a media recommendation reranker. Reply with strict JSON only, no prose, using exactly these fields:
confidence (number 0-1, your confidence in this ranking batch),
followup_question (string or null, one short clarifying question if the query is too vague to rank well),
ranked (array of {id, score (number 0-1), reason (short, in the user's language)}).
Rules: when strict_kinds is non-empty, never rank an item outside those kinds; at most one item per series_key; ids must come from the candidate list.`

// Confidence values substituted when the model only reports the legacy
// low_confidence boolean.
const (
	lowConfidenceValue  = 0.3
	highConfidenceValue = 0.8
)

// Client calls the chat-completions endpoint. Implements
// recommend.RerankClient.
type Client struct {
	cfg        config.LLMConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*recommend.RerankOutcome]
	log        zerolog.Logger
}

// NewClient builds a client from config. Returns ErrNotConfigured when the
// API key is empty; callers treat that as "run without a reranker".
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	metrics.LLMCircuitBreakerState.Set(0)
	breaker := gobreaker.NewCircuitBreaker[*recommend.RerankOutcome](gobreaker.Settings{
		Name:        "llm-rerank",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			log := logging.Component("llm")
			log.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
			metrics.LLMCircuitBreakerState.Set(stateToFloat(to))
		},
	})

	perSecond := rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(perSecond, cfg.RequestsPerMinute),
		breaker:    breaker,
		log:        logging.Component("llm"),
	}, nil
}

// chat-completions wire types.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// rerankReply tolerates both the current numeric confidence field and the
// legacy low_confidence boolean.
type rerankReply struct {
	Confidence       *float64 `json:"confidence"`
	LowConfidence    *bool    `json:"low_confidence"`
	FollowupQuestion string   `json:"followup_question"`
	Ranked           []struct {
		ID     string  `json:"id"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"ranked"`
}

// Rerank performs one structured exchange with the model. The call is rate
// limited, bounded by the configured timeout, and guarded by the circuit
// breaker; any failure is an error for the pipeline to degrade on.
func (c *Client) Rerank(ctx context.Context, req recommend.RerankRequest) (*recommend.RerankOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("llm rate limit: %w", err)
	}

	start := time.Now()
	outcome, err := c.breaker.Execute(func() (*recommend.RerankOutcome, error) {
		return c.doRerank(ctx, req)
	})
	metrics.RecordLLMRequest(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (c *Client) doRerank(ctx context.Context, req recommend.RerankRequest) (*recommend.RerankOutcome, error) {
	if len(req.Candidates) > c.cfg.MaxCandidates {
		req.Candidates = req.Candidates[:c.cfg.MaxCandidates]
	}
	userPayload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userPayload)},
		},
	}
	body.ResponseFormat.Type = "json_object"
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a bounded slice of the body for the log, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().Int("status", resp.StatusCode).Bytes("body", snippet).Msg("Chat completion failed")
		return nil, fmt.Errorf("chat completion status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, errors.New("chat response has no choices")
	}

	return parseReply(chat.Choices[0].Message.Content)
}

// parseReply parses the model's JSON content into a RerankOutcome,
// tolerating code fences and surrounding prose.
func parseReply(content string) (*recommend.RerankOutcome, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}
	var reply rerankReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("unmarshal rerank reply: %w", err)
	}

	outcome := &recommend.RerankOutcome{FollowupQuestion: strings.TrimSpace(reply.FollowupQuestion)}
	switch {
	case reply.Confidence != nil:
		outcome.Confidence = clamp01(*reply.Confidence)
	case reply.LowConfidence != nil && *reply.LowConfidence:
		outcome.Confidence = lowConfidenceValue
	default:
		outcome.Confidence = highConfidenceValue
	}

	for _, entry := range reply.Ranked {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			continue
		}
		outcome.Ranked = append(outcome.Ranked, recommend.RankedChoice{
			ID:     id,
			Score:  clamp01(entry.Score),
			Reason: strings.TrimSpace(entry.Reason),
		})
	}
	return outcome, nil
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

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
