// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package services

import (
	"context"
	"time"

	"github.com/cocodzh/watchwhat/internal/logging"
)

// SessionSweeper removes expired clarification sessions and reports how many
// were dropped. Satisfied by *recommend.MemorySessionStore.
type SessionSweeper interface {
	Sweep() int
}

// SweeperService periodically sweeps expired clarification sessions. The
// badger-backed session store expires entries via TTL and does not need this.
type SweeperService struct {
	sweeper  SessionSweeper
	interval time.Duration
}

// NewSweeperService creates a session sweeper running at the given interval.
func NewSweeperService(sweeper SessionSweeper, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweeperService{sweeper: sweeper, interval: interval}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	log := logging.Component("session-sweeper")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweeper.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept expired clarification sessions")
			}
		}
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *SweeperService) String() string {
	return "session-sweeper"
}
