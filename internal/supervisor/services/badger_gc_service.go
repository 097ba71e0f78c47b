// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package services

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/cocodzh/watchwhat/internal/logging"
)

// ValueLogGC matches *badger.DB's garbage collection method.
type ValueLogGC interface {
	RunValueLogGC(discardRatio float64) error
}

// BadgerGCService runs badger's value-log garbage collection on a timer.
// Badger never reclaims value-log space on its own; the embedder has to call
// RunValueLogGC periodically. One GC call rewrites at most one log file, so
// on success the call is repeated until badger reports nothing to rewrite.
type BadgerGCService struct {
	db           ValueLogGC
	interval     time.Duration
	discardRatio float64
}

// NewBadgerGCService creates a GC service for a badger-backed session store.
func NewBadgerGCService(db ValueLogGC, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &BadgerGCService{db: db, interval: interval, discardRatio: 0.5}
}

// Serve implements suture.Service.
func (b *BadgerGCService) Serve(ctx context.Context) error {
	log := logging.Component("badger-gc")
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				err := b.db.RunValueLogGC(b.discardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					log.Warn().Err(err).Msg("Badger value log GC failed")
				}
				break
			}
		}
	}
}

// String implements fmt.Stringer for suture log messages.
func (b *BadgerGCService) String() string {
	return "badger-gc"
}
