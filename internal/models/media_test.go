// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package models

import "testing"

func TestCatalogItemAttr(t *testing.T) {
	item := CatalogItem{Metadata: map[string]string{AttrGenres: "sci-fi,drama"}}

	if got := item.Attr(AttrGenres); got != "sci-fi,drama" {
		t.Errorf("Attr(genres) = %q, want sci-fi,drama", got)
	}
	if got := item.Attr(AttrRating); got != "" {
		t.Errorf("Attr(rating) = %q, want empty for absent key", got)
	}

	// A zero-value item has no metadata map at all.
	var empty CatalogItem
	if got := empty.Attr(AttrGenres); got != "" {
		t.Errorf("Attr on nil metadata = %q, want empty", got)
	}
}

func TestMediaKindValid(t *testing.T) {
	for _, kind := range AllKinds() {
		if !kind.Valid() {
			t.Errorf("%s reported invalid", kind)
		}
	}
	if MediaKind("podcast").Valid() {
		t.Error("unknown kind reported valid")
	}
}
