// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cocodzh/watchwhat/internal/logging"
)

func TestRequestIDGenerated(t *testing.T) {
	var seenCtx, seenLog string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenCtx = GetRequestID(r.Context())
		seenLog = logging.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seenCtx == "" {
		t.Fatal("no request ID in context")
	}
	if seenLog != seenCtx {
		t.Errorf("logging context ID %q != %q", seenLog, seenCtx)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seenCtx {
		t.Errorf("response header %q != %q", got, seenCtx)
	}
}

func TestRequestIDForwarded(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "upstream-42" {
		t.Errorf("request ID = %q, want upstream-42", seen)
	}
}

func TestPrometheusCapturesStatus(t *testing.T) {
	handler := Prometheus(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tea", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
