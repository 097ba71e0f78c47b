// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/cocodzh/watchwhat/internal/metrics"
)

// MemorySessionStore holds pending clarification sessions in process
// memory. Sessions are short-lived, so losing them on restart only costs
// the user a restarted question. Safe for concurrent use.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Put stores a session until its expiry.
func (s *MemorySessionStore) Put(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return nil
}

// Get returns the session for token, or ErrClarificationExpired when the
// token is unknown or the session has lapsed. Expired sessions are removed
// on access.
func (s *MemorySessionStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrClarificationExpired
	}
	if session.Expired(s.now()) {
		delete(s.sessions, token)
		metrics.SessionsActive.Set(float64(len(s.sessions)))
		metrics.SessionsExpired.Inc()
		return nil, ErrClarificationExpired
	}
	return session, nil
}

// Delete removes a session. Absent tokens are not an error.
func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return nil
}

// Sweep removes all expired sessions and returns how many were dropped.
// Called periodically by the supervisor's sweeper service.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		metrics.SessionsActive.Set(float64(len(s.sessions)))
		metrics.SessionsExpired.Add(float64(removed))
	}
	return removed
}

// Len reports the number of stored sessions, expired or not.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
