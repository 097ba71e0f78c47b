// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package models

import (
	"time"
)

// MediaKind classifies an item as a movie, TV series, or book.
type MediaKind string

const (
	// KindMovie is a feature film.
	KindMovie MediaKind = "movie"
	// KindTV is a television series or season.
	KindTV MediaKind = "tv"
	// KindBook is a book, including comics and serialized volumes.
	KindBook MediaKind = "book"
)

// Valid reports whether k is one of the recognized media kinds.
func (k MediaKind) Valid() bool {
	switch k {
	case KindMovie, KindTV, KindBook:
		return true
	default:
		return false
	}
}

// AllKinds lists every recognized media kind in a stable order.
func AllKinds() []MediaKind {
	return []MediaKind{KindMovie, KindTV, KindBook}
}

// Well-known catalog metadata attribute keys. Catalog metadata is free-form;
// these are the attributes the scorer understands. Absent keys contribute a
// neutral (zero) score weight.
const (
	// AttrGenres is a comma-separated list of genre/topic tags.
	AttrGenres = "genres"
	// AttrRuntimeMinutes is the runtime in whole minutes (movies, episodes).
	AttrRuntimeMinutes = "runtime_minutes"
	// AttrRating is the aggregate critic/community rating on a 0-10 scale.
	AttrRating = "rating"
	// AttrMood is an editorial mood tag (light, dark, cozy, intense).
	AttrMood = "mood"
)

// HistoryItem is a single consumed item from the user's synced watch/read
// history. Rows are written by the sync collaborator and are immutable from
// the core's point of view.
type HistoryItem struct {
	// ExternalID is the upstream subject identifier, unique per source.
	ExternalID string `json:"external_id"`

	// Title is the item title as synced.
	Title string `json:"title"`

	// Kind is the media kind.
	Kind MediaKind `json:"kind"`

	// Rating is the user's own rating on a 0-10 scale, nil when unrated.
	Rating *float64 `json:"rating,omitempty"`

	// ConsumedAt is when the user marked the item as watched/read.
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`

	// Tags are genre/topic tags attached to the item, if synced.
	Tags []string `json:"tags,omitempty"`

	// URL is the upstream detail page, kept for presentation only.
	URL string `json:"url,omitempty"`

	// Source names the sync collaborator that wrote the row ("douban",
	// "goodreads", ...). Empty for manually imported rows.
	Source string `json:"source,omitempty"`
}

// Rated reports whether the user rated this item.
func (h HistoryItem) Rated() bool {
	return h.Rating != nil
}

// CatalogItem is an item from the candidate catalog. Metadata is best-effort:
// any attribute may be missing.
type CatalogItem struct {
	// ExternalID is the upstream subject identifier, unique per source.
	ExternalID string `json:"external_id"`

	// Title is the item title.
	Title string `json:"title"`

	// Kind is the media kind.
	Kind MediaKind `json:"kind"`

	// Year is the release/publication year, zero when unknown.
	Year int `json:"year,omitempty"`

	// URL is the upstream detail page.
	URL string `json:"url,omitempty"`

	// Metadata holds additional attributes keyed by the Attr* constants.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Attr returns the metadata value for key, empty when absent. Absent
// attributes contribute a neutral score, so callers never need to
// distinguish missing from empty.
func (c CatalogItem) Attr(key string) string {
	return c.Metadata[key]
}
