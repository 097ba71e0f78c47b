// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"strings"
	"testing"

	"github.com/cocodzh/watchwhat/internal/models"
)

func rating(v float64) *float64 { return &v }

func TestBuildProfileSeriesCollapse(t *testing.T) {
	history := []models.HistoryItem{
		{ExternalID: "op-1", Title: "One Piece Volume 1", Kind: models.KindBook, Rating: rating(9)},
		{ExternalID: "op-2", Title: "One Piece Volume 2", Kind: models.KindBook, Rating: rating(7)},
		{ExternalID: "op-3", Title: "海贼王 3", Kind: models.KindBook, Rating: rating(8)},
	}
	profile := BuildProfile(history)

	if got := profile.RatedByKind[models.KindBook]; got != 1 {
		t.Errorf("RatedByKind[book] = %d, want 1 (series counts once)", got)
	}
	// The representative is the best-rated volume.
	if got := profile.AvgRatingByKind[models.KindBook]; got != 9 {
		t.Errorf("AvgRatingByKind[book] = %v, want 9", got)
	}
	if len(profile.SeenIDs) != 3 {
		t.Errorf("SeenIDs = %d, want 3", len(profile.SeenIDs))
	}
}

func TestBuildProfileLikedTitles(t *testing.T) {
	var history []models.HistoryItem
	titles := []string{"Aaa", "Bbb", "Ccc", "Ddd", "Eee", "Fff", "Ggg"}
	for i, title := range titles {
		history = append(history, models.HistoryItem{
			ExternalID: title,
			Title:      title,
			Kind:       models.KindMovie,
			Rating:     rating(9 - float64(i)*0.1),
		})
	}
	history = append(history, models.HistoryItem{
		ExternalID: "meh", Title: "Meh", Kind: models.KindMovie, Rating: rating(6),
	})

	profile := BuildProfile(history)
	if len(profile.LikedTitles) != maxLikedTitles {
		t.Fatalf("LikedTitles = %d entries, want %d", len(profile.LikedTitles), maxLikedTitles)
	}
	if profile.LikedTitles[0] != "Aaa" {
		t.Errorf("LikedTitles[0] = %q, want Aaa (highest rated first)", profile.LikedTitles[0])
	}
	for _, title := range profile.LikedTitles {
		if title == "Meh" {
			t.Error("title below the liked floor leaked into LikedTitles")
		}
	}
}

func TestBuildProfileTagCounts(t *testing.T) {
	history := []models.HistoryItem{
		{ExternalID: "1", Title: "A", Kind: models.KindMovie, Tags: []string{"Mystery", "drama"}},
		{ExternalID: "2", Title: "B", Kind: models.KindMovie, Tags: []string{"mystery"}},
	}
	profile := BuildProfile(history)
	if profile.TagCounts["mystery"] != 2 {
		t.Errorf("TagCounts[mystery] = %d, want 2 (case folded)", profile.TagCounts["mystery"])
	}
	top := profile.TopTags(1)
	if len(top) != 1 || top[0] != "mystery" {
		t.Errorf("TopTags(1) = %v, want [mystery]", top)
	}
}

func TestProfileSummary(t *testing.T) {
	history := []models.HistoryItem{
		{ExternalID: "m1", Title: "Heat", Kind: models.KindMovie, Rating: rating(8.5)},
		{ExternalID: "b1", Title: "白夜行", Kind: models.KindBook, Rating: rating(9)},
	}
	summary := BuildProfile(history).Summary()
	if !strings.Contains(summary, "movies avg rating 8.5") {
		t.Errorf("summary missing movie average: %q", summary)
	}
	if !strings.Contains(summary, "favorites:") {
		t.Errorf("summary missing favorites: %q", summary)
	}
}

func TestProfileSummarySparse(t *testing.T) {
	summary := BuildProfile([]models.HistoryItem{
		{ExternalID: "x", Title: "X", Kind: models.KindMovie},
	}).Summary()
	if summary != "sparse profile, few rating signals" {
		t.Errorf("sparse summary = %q", summary)
	}
}
