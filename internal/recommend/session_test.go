// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testSession(token string, expiresAt time.Time) *Session {
	return &Session{
		Token:     token,
		Query:     "随便",
		Question:  questionKind,
		TopK:      10,
		Profile:   emptyProfile(),
		CreatedAt: expiresAt.Add(-5 * time.Minute),
		ExpiresAt: expiresAt,
	}
}

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	session := testSession("tok-1", time.Now().Add(time.Minute))

	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Query != session.Query || got.Question != session.Question {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrClarificationExpired) {
		t.Errorf("Get after delete = %v, want ErrClarificationExpired", err)
	}
}

func TestMemorySessionStoreUnknownToken(t *testing.T) {
	store := NewMemorySessionStore()
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrClarificationExpired) {
		t.Errorf("err = %v, want ErrClarificationExpired", err)
	}
	// Deleting an absent token is fine.
	if err := store.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("Delete absent = %v", err)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	if err := store.Put(ctx, testSession("tok-1", current.Add(5*time.Minute))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Get(ctx, "tok-1"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	current = current.Add(6 * time.Minute)
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrClarificationExpired) {
		t.Fatalf("Get after expiry = %v, want ErrClarificationExpired", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired session not removed on access, len = %d", store.Len())
	}
}

func TestMemorySessionStoreSweep(t *testing.T) {
	store := NewMemorySessionStore()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	_ = store.Put(ctx, testSession("old-1", current.Add(time.Minute)))
	_ = store.Put(ctx, testSession("old-2", current.Add(2*time.Minute)))
	_ = store.Put(ctx, testSession("fresh", current.Add(time.Hour)))

	current = current.Add(10 * time.Minute)
	if removed := store.Sweep(); removed != 2 {
		t.Errorf("Sweep removed %d, want 2", removed)
	}
	if store.Len() != 1 {
		t.Errorf("len after sweep = %d, want 1", store.Len())
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session gone after sweep: %v", err)
	}
}
