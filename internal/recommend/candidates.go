// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"context"
	"strings"

	"github.com/cocodzh/watchwhat/internal/models"
	"github.com/cocodzh/watchwhat/internal/series"
)

// maxCatalogPages bounds catalog paging so a misbehaving cursor cannot loop
// the builder forever.
const maxCatalogPages = 50

// poolStats reports what the builder saw while assembling the pool.
type poolStats struct {
	// CatalogScanned counts catalog rows examined.
	CatalogScanned int

	// SeriesDeduped counts unseen rows dropped as duplicate series entries.
	SeriesDeduped int

	// UsedFallback is true when the editorial catalog supplied the pool.
	UsedFallback bool
}

// buildCandidates pages the catalog and returns unseen candidates, one
// representative per series. The pool never intersects history by external
// ID, and never contains a series key the history already covers. A storage
// error propagates; an empty catalog falls back to the editorial list. When
// not even the fallback yields a candidate, ErrEmptyCandidatePool is
// returned alongside the stats.
func buildCandidates(ctx context.Context, catalog CatalogProvider, profile *Profile, kind models.MediaKind, cfg Config) ([]Candidate, poolStats, error) {
	var (
		pool    []Candidate
		stats   poolStats
		cursor  string
		emitted = make(map[string]bool)
	)
	// History series keys are excluded too: volume 2 of a finished series is
	// not a fresh recommendation.
	for key := range profile.SeenSeriesKeys {
		emitted[key] = true
	}

	for page := 0; page < maxCatalogPages; page++ {
		items, next, err := catalog.GetCatalogPage(ctx, kind, cursor, cfg.PageSize)
		if err != nil {
			return nil, stats, err
		}
		stats.CatalogScanned += len(items)
		for _, item := range items {
			if profile.Seen(item.ExternalID) {
				continue
			}
			identity := series.BuildIdentity(item.Title, item.Kind)
			if emitted[identity.Key] {
				stats.SeriesDeduped++
				continue
			}
			emitted[identity.Key] = true
			pool = append(pool, newCandidate(item, identity))
		}
		if next == "" || len(pool) >= cfg.TargetPool {
			cursor = next
			break
		}
		cursor = next
	}

	if stats.CatalogScanned == 0 && cfg.FallbackCatalog {
		// Nothing synced yet. Serve the editorial catalog instead of shrugging.
		fallback, deduped := fallbackCandidates(profile, kind)
		stats.SeriesDeduped += deduped
		stats.UsedFallback = len(fallback) > 0
		pool = fallback
	}
	if len(pool) == 0 {
		return nil, stats, ErrEmptyCandidatePool
	}
	return pool, stats, nil
}

func newCandidate(item models.CatalogItem, identity series.Identity) Candidate {
	return Candidate{
		Item:         item,
		SeriesKey:    identity.Key,
		DisplayTitle: identity.DisplayTitle,
		ReasonTags:   splitTags(item.Attr(models.AttrGenres)),
	}
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
