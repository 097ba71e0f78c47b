// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/cocodzh/watchwhat/internal/config"
	"github.com/cocodzh/watchwhat/internal/models"
	"github.com/cocodzh/watchwhat/internal/recommend"
)

type fakeEngine struct {
	outcome *recommend.Outcome
	err     error

	lastReq    recommend.Request
	lastToken  string
	lastAnswer string
}

func (f *fakeEngine) Recommend(_ context.Context, req recommend.Request) (*recommend.Outcome, error) {
	f.lastReq = req
	return f.outcome, f.err
}

func (f *fakeEngine) AnswerClarification(_ context.Context, token, answer string) (*recommend.Outcome, error) {
	f.lastToken = token
	f.lastAnswer = answer
	return f.outcome, f.err
}

type fakeLibrary struct {
	items   []models.HistoryItem
	total   int
	err     error
	pingErr error

	lastKind   models.MediaKind
	lastLimit  int
	lastOffset int
}

func (f *fakeLibrary) ListLibrary(_ context.Context, kind models.MediaKind, limit, offset int) ([]models.HistoryItem, int, error) {
	f.lastKind = kind
	f.lastLimit = limit
	f.lastOffset = offset
	return f.items, f.total, f.err
}

func (f *fakeLibrary) Ping(_ context.Context) error {
	return f.pingErr
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
	}
}

func newTestServer(engine *fakeEngine, library *fakeLibrary) http.Handler {
	return NewServer(engine, library, testConfig()).Router()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func doneOutcome() *recommend.Outcome {
	return &recommend.Outcome{
		Status: recommend.StatusDone,
		Items: []recommend.Recommendation{
			{
				Candidate: recommend.Candidate{
					Item: models.CatalogItem{
						ExternalID: "m-1",
						Title:      "Heat",
						Kind:       models.KindMovie,
						Year:       1995,
					},
					SeriesKey:    "movie:heat",
					DisplayTitle: "Heat",
				},
				Rank:          1,
				Score:         0.91,
				Justification: "close to your highly rated crime films",
			},
		},
		Confidence: 0.8,
		RequestID:  "req-1",
	}
}

func TestHandleRecommend(t *testing.T) {
	engine := &fakeEngine{outcome: doneOutcome()}
	handler := newTestServer(engine, &fakeLibrary{})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend",
		`{"query":"something light","kind":"movie","top_k":5,"allow_followup":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp RecommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if len(resp.Items) != 1 || resp.Items[0].ExternalID != "m-1" || resp.Items[0].Rank != 1 {
		t.Errorf("unexpected items: %+v", resp.Items)
	}

	if engine.lastReq.Kind != models.KindMovie {
		t.Errorf("engine kind = %q, want movie", engine.lastReq.Kind)
	}
	if engine.lastReq.TopK != 5 || !engine.lastReq.AllowFollowup {
		t.Errorf("engine request = %+v", engine.lastReq)
	}
	if engine.lastReq.RequestID == "" {
		t.Error("request ID was not propagated to the engine")
	}
}

func TestHandleRecommendFollowupDefault(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"omitted defaults to true", `{"query":"something light"}`, true},
		{"explicit false respected", `{"query":"something light","allow_followup":false}`, false},
		{"explicit true respected", `{"query":"something light","allow_followup":true}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{outcome: doneOutcome()}
			handler := newTestServer(engine, &fakeLibrary{})

			rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			if engine.lastReq.AllowFollowup != tt.want {
				t.Errorf("allow_followup = %v, want %v", engine.lastReq.AllowFollowup, tt.want)
			}
		})
	}
}

func TestHandleRecommendValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"query":`},
		{"unknown field", `{"query":"x","bogus":true}`},
		{"bad kind", `{"query":"x","kind":"podcast"}`},
		{"top_k too large", `{"query":"x","top_k":1000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{outcome: doneOutcome()}
			handler := newTestServer(engine, &fakeLibrary{})

			rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if engine.lastReq.Query != "" {
				t.Error("engine was called for an invalid request")
			}
		})
	}
}

func TestHandleRecommendNoHistory(t *testing.T) {
	engine := &fakeEngine{err: recommend.ErrNoHistory}
	handler := newTestServer(engine, &fakeLibrary{})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend", `{"query":"anything"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if !strings.Contains(resp.Error, "history") {
		t.Errorf("error = %q, want a no-history message", resp.Error)
	}
}

func TestHandleRecommendStorageFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("database is locked")}
	handler := newTestServer(engine, &fakeLibrary{})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend", `{"query":"anything"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleFollowup(t *testing.T) {
	engine := &fakeEngine{outcome: doneOutcome()}
	handler := newTestServer(engine, &fakeLibrary{})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend/followup",
		`{"session_token":"tok-1","answer":"movies please"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if engine.lastToken != "tok-1" || engine.lastAnswer != "movies please" {
		t.Errorf("engine got token=%q answer=%q", engine.lastToken, engine.lastAnswer)
	}
}

func TestHandleFollowupExpired(t *testing.T) {
	engine := &fakeEngine{outcome: &recommend.Outcome{Status: recommend.StatusExpired}}
	handler := newTestServer(engine, &fakeLibrary{})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend/followup",
		`{"session_token":"stale","answer":"tv"}`)
	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}

	var resp RecommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "must_restart" {
		t.Errorf("status = %q, want must_restart", resp.Status)
	}
}

func TestHandleFollowupMissingToken(t *testing.T) {
	engine := &fakeEngine{outcome: doneOutcome()}
	handler := newTestServer(engine, &fakeLibrary{})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recommend/followup", `{"answer":"tv"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleLibrary(t *testing.T) {
	rated := 9.0
	consumed := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	library := &fakeLibrary{
		items: []models.HistoryItem{
			{
				ExternalID: "m-1",
				Title:      "Heat",
				Kind:       models.KindMovie,
				Rating:     &rated,
				ConsumedAt: &consumed,
				Tags:       []string{"crime"},
			},
		},
		total: 42,
	}
	handler := newTestServer(&fakeEngine{}, library)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/library?kind=movie&limit=10&offset=20", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp libraryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 42 || resp.Limit != 10 || resp.Offset != 20 {
		t.Errorf("envelope = total %d limit %d offset %d", resp.Total, resp.Limit, resp.Offset)
	}
	if len(resp.Items) != 1 || resp.Items[0].ConsumedAt != "2026-03-14T20:00:00Z" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
	if library.lastKind != models.KindMovie || library.lastLimit != 10 || library.lastOffset != 20 {
		t.Errorf("store got kind=%q limit=%d offset=%d", library.lastKind, library.lastLimit, library.lastOffset)
	}
}

func TestHandleLibraryBadParams(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"bad kind", "/api/v1/library?kind=vinyl"},
		{"limit zero", "/api/v1/library?limit=0"},
		{"limit not a number", "/api/v1/library?limit=many"},
		{"negative offset", "/api/v1/library?offset=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestServer(&fakeEngine{}, &fakeLibrary{})
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	handler := newTestServer(&fakeEngine{}, &fakeLibrary{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	unhealthy := newTestServer(&fakeEngine{}, &fakeLibrary{pingErr: errors.New("closed")})
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	// Liveness ignores storage state, readiness does not.
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("live status = %d, want 200", rec.Code)
	}
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready status = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(&fakeEngine{}, &fakeLibrary{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "watchwhat_") {
		t.Error("metrics output does not contain watchwhat collectors")
	}
}
