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

	badger "github.com/dgraph-io/badger/v4"
)

func newBadgerStore(t *testing.T) *BadgerSessionStore {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerSessionStore(db)
}

func badgerSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:     token,
		Query:     "something light",
		Question:  "Movies, series, or books?",
		TopK:      10,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestBadgerSessionStoreRoundTrip(t *testing.T) {
	store := newBadgerStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, badgerSession("tok-1", time.Minute)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Query != "something light" || got.TopK != 10 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestBadgerSessionStoreUnknownToken(t *testing.T) {
	store := newBadgerStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrClarificationExpired) {
		t.Fatalf("Get(missing) = %v, want ErrClarificationExpired", err)
	}
}

func TestBadgerSessionStoreRejectsExpired(t *testing.T) {
	store := newBadgerStore(t)
	if err := store.Put(context.Background(), badgerSession("stale", -time.Second)); err == nil {
		t.Fatal("Put accepted an already expired session")
	}
}

func TestBadgerSessionStoreDelete(t *testing.T) {
	store := newBadgerStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, badgerSession("tok-2", time.Minute)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, "tok-2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "tok-2"); !errors.Is(err, ErrClarificationExpired) {
		t.Fatalf("Get after delete = %v, want ErrClarificationExpired", err)
	}
	// Deleting an absent token is not an error.
	if err := store.Delete(ctx, "tok-2"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}
