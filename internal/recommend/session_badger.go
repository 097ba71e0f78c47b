// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const sessionKeyPrefix = "clarify:"

// BadgerSessionStore persists pending clarification sessions in BadgerDB,
// so a restart between the question and the answer does not force the user
// to start over. Entries carry a Badger TTL matched to the session expiry,
// which makes expiry enforcement double-layered: Badger drops the key and
// Get re-checks ExpiresAt for clock skew between the two.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore wraps an open BadgerDB handle.
func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

// Put stores a session with a TTL equal to its remaining lifetime.
func (s *BadgerSessionStore) Put(_ context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.Token)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(sessionKeyPrefix+session.Token), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Get retrieves a session by token. Unknown and expired tokens both return
// ErrClarificationExpired.
func (s *BadgerSessionStore) Get(_ context.Context, token string) (*Session, error) {
	var session Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + token))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrClarificationExpired
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrClarificationExpired
	}
	return &session, nil
}

// Delete removes a session. Absent tokens are not an error.
func (s *BadgerSessionStore) Delete(_ context.Context, token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(sessionKeyPrefix + token))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
