// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/cocodzh/watchwhat/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestHistoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rating := 8.5
	consumed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	item := models.HistoryItem{
		ExternalID: "m-1",
		Title:      "Heat",
		Kind:       models.KindMovie,
		Rating:     &rating,
		ConsumedAt: &consumed,
		Tags:       []string{"crime", "drama"},
		URL:        "https://example.org/m-1",
		Source:     "douban",
	}
	if err := db.UpsertHistoryItem(ctx, item); err != nil {
		t.Fatalf("UpsertHistoryItem: %v", err)
	}

	got, err := db.GetHistory(ctx, "")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("history len = %d, want 1", len(got))
	}
	h := got[0]
	if h.Title != "Heat" || h.Kind != models.KindMovie || h.URL != item.URL || h.Source != "douban" {
		t.Errorf("round trip mismatch: %+v", h)
	}
	if h.Rating == nil || *h.Rating != 8.5 {
		t.Errorf("rating = %v, want 8.5", h.Rating)
	}
	if len(h.Tags) != 2 || h.Tags[0] != "crime" {
		t.Errorf("tags = %v", h.Tags)
	}
}

func TestHistoryUpsertReplaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	item := models.HistoryItem{ExternalID: "m-1", Title: "Old Title", Kind: models.KindMovie}
	if err := db.UpsertHistoryItem(ctx, item); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	item.Title = "New Title"
	if err := db.UpsertHistoryItem(ctx, item); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := db.GetHistory(ctx, "")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(got) != 1 || got[0].Title != "New Title" {
		t.Errorf("got %+v, want single updated row", got)
	}
}

func TestHistoryKindFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i, kind := range []models.MediaKind{models.KindMovie, models.KindBook, models.KindBook} {
		item := models.HistoryItem{ExternalID: "h-" + strconv.Itoa(i), Title: "T" + strconv.Itoa(i), Kind: kind}
		if err := db.UpsertHistoryItem(ctx, item); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	books, err := db.GetHistory(ctx, models.KindBook)
	if err != nil {
		t.Fatalf("GetHistory(book): %v", err)
	}
	if len(books) != 2 {
		t.Errorf("books = %d, want 2", len(books))
	}
	n, err := db.CountHistory(ctx, models.KindMovie)
	if err != nil || n != 1 {
		t.Errorf("CountHistory(movie) = %d, %v, want 1", n, err)
	}
}

func TestCatalogPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		item := models.CatalogItem{
			ExternalID: "c-" + pad(i),
			Title:      "Title " + pad(i),
			Kind:       models.KindMovie,
			Year:       2000 + i,
			Metadata:   map[string]string{models.AttrRating: "7.5"},
		}
		if err := db.UpsertCatalogItem(ctx, item); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	var (
		cursor string
		seen   = map[string]bool{}
		pages  int
	)
	for {
		items, next, err := db.GetCatalogPage(ctx, "", cursor, 10)
		if err != nil {
			t.Fatalf("GetCatalogPage: %v", err)
		}
		pages++
		for _, item := range items {
			if seen[item.ExternalID] {
				t.Fatalf("item %s returned twice", item.ExternalID)
			}
			seen[item.ExternalID] = true
		}
		if next == "" {
			break
		}
		cursor = next
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
	}
	if len(seen) != 25 {
		t.Errorf("paged through %d items, want 25", len(seen))
	}
}

func TestCatalogMetadataRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	item := models.CatalogItem{
		ExternalID: "c-1",
		Title:      "Solaris",
		Kind:       models.KindBook,
		Year:       1961,
		Metadata: map[string]string{
			models.AttrGenres: "sci-fi,philosophy",
			models.AttrRating: "8.9",
		},
	}
	if err := db.UpsertCatalogItem(ctx, item); err != nil {
		t.Fatalf("UpsertCatalogItem: %v", err)
	}
	items, _, err := db.GetCatalogPage(ctx, models.KindBook, "", 10)
	if err != nil {
		t.Fatalf("GetCatalogPage: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if got := items[0].Attr(models.AttrGenres); got != "sci-fi,philosophy" {
		t.Errorf("genres = %q", got)
	}
	if items[0].Year != 1961 {
		t.Errorf("year = %d", items[0].Year)
	}
}

func TestCatalogKindFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_ = db.UpsertCatalogItem(ctx, models.CatalogItem{ExternalID: "b-1", Title: "B", Kind: models.KindBook})
	_ = db.UpsertCatalogItem(ctx, models.CatalogItem{ExternalID: "m-1", Title: "M", Kind: models.KindMovie})

	items, _, err := db.GetCatalogPage(ctx, models.KindMovie, "", 10)
	if err != nil {
		t.Fatalf("GetCatalogPage: %v", err)
	}
	if len(items) != 1 || items[0].ExternalID != "m-1" {
		t.Errorf("items = %+v, want only m-1", items)
	}
}

func TestListLibrary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.AddDate(0, 0, i)
		item := models.HistoryItem{
			ExternalID: "h-" + strconv.Itoa(i),
			Title:      "T" + strconv.Itoa(i),
			Kind:       models.KindMovie,
			ConsumedAt: &at,
		}
		if err := db.UpsertHistoryItem(ctx, item); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	items, total, err := db.ListLibrary(ctx, "", 2, 0)
	if err != nil {
		t.Fatalf("ListLibrary: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(items) != 2 {
		t.Fatalf("page len = %d, want 2", len(items))
	}
	if items[0].ExternalID != "h-4" {
		t.Errorf("first item = %s, want most recent h-4", items[0].ExternalID)
	}

	next, _, err := db.ListLibrary(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("ListLibrary offset: %v", err)
	}
	if len(next) != 2 || next[0].ExternalID == items[0].ExternalID {
		t.Errorf("offset page overlaps: %+v", next)
	}
}

func pad(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}
