// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cocodzh/watchwhat/internal/models"
	"github.com/cocodzh/watchwhat/internal/series"
)

// likedRatingFloor is the 10-point rating at or above which a history item
// counts as "liked" in the profile summary.
const likedRatingFloor = 8.0

// maxLikedTitles bounds the liked-titles sample in the summary.
const maxLikedTitles = 5

// Profile is a compact aggregate of the user's history. It is the only
// history-derived signal that leaves the process: the reranker sees the
// summary string, never raw history rows.
type Profile struct {
	// AvgRatingByKind is the mean rating per kind over rated series
	// representatives.
	AvgRatingByKind map[models.MediaKind]float64 `json:"avg_rating_by_kind"`

	// RatedByKind counts rated series representatives per kind.
	RatedByKind map[models.MediaKind]int `json:"rated_by_kind"`

	// LikedTitles samples the highest-rated series titles, capped.
	LikedTitles []string `json:"liked_titles"`

	// TagCounts is the tag distribution over the whole history, used by the
	// scorer for tag-overlap relevance.
	TagCounts map[string]int `json:"tag_counts"`

	// SeenIDs holds every history external ID.
	SeenIDs map[string]bool `json:"-"`

	// SeenSeriesKeys holds every history series key, so other volumes or
	// seasons of a consumed work are excluded from candidates.
	SeenSeriesKeys map[string]bool `json:"-"`
}

// seriesRep is the best-rated history entry for one series key.
type seriesRep struct {
	item         models.HistoryItem
	displayTitle string
	rating       float64
	rated        bool
}

// BuildProfile aggregates history into a Profile. Series variants collapse
// to their best-rated entry first so a twelve-volume series counts once.
func BuildProfile(history []models.HistoryItem) *Profile {
	p := &Profile{
		AvgRatingByKind: make(map[models.MediaKind]float64),
		RatedByKind:     make(map[models.MediaKind]int),
		TagCounts:       make(map[string]int),
		SeenIDs:         make(map[string]bool, len(history)),
		SeenSeriesKeys:  make(map[string]bool),
	}

	bySeries := make(map[string]seriesRep)
	for _, item := range history {
		p.SeenIDs[item.ExternalID] = true
		for _, tag := range item.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				p.TagCounts[tag]++
			}
		}

		identity := series.BuildIdentity(item.Title, item.Kind)
		p.SeenSeriesKeys[identity.Key] = true

		rep := seriesRep{item: item, displayTitle: identity.DisplayTitle, rating: -1}
		if item.Rated() {
			rep.rating = *item.Rating
			rep.rated = true
		}
		current, ok := bySeries[identity.Key]
		if !ok || rep.rating > current.rating {
			bySeries[identity.Key] = rep
		}
	}

	sums := make(map[models.MediaKind]float64)
	reps := make([]seriesRep, 0, len(bySeries))
	for _, rep := range bySeries {
		reps = append(reps, rep)
		if rep.rated {
			sums[rep.item.Kind] += rep.rating
			p.RatedByKind[rep.item.Kind]++
		}
	}
	for kind, n := range p.RatedByKind {
		p.AvgRatingByKind[kind] = sums[kind] / float64(n)
	}

	sort.Slice(reps, func(i, j int) bool {
		if reps[i].rating != reps[j].rating {
			return reps[i].rating > reps[j].rating
		}
		return reps[i].displayTitle < reps[j].displayTitle
	})
	for _, rep := range reps {
		if !rep.rated || rep.rating < likedRatingFloor {
			continue
		}
		if containsString(p.LikedTitles, rep.displayTitle) {
			continue
		}
		p.LikedTitles = append(p.LikedTitles, rep.displayTitle)
		if len(p.LikedTitles) >= maxLikedTitles {
			break
		}
	}

	return p
}

// Seen reports whether the external ID appears in history.
func (p *Profile) Seen(externalID string) bool {
	return p.SeenIDs[externalID]
}

// TopTags returns the n most frequent history tags, frequency descending
// with alphabetical tie-break.
func (p *Profile) TopTags(n int) []string {
	type tagCount struct {
		tag   string
		count int
	}
	counts := make([]tagCount, 0, len(p.TagCounts))
	for tag, count := range p.TagCounts {
		counts = append(counts, tagCount{tag, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].tag < counts[j].tag
	})
	if n > len(counts) {
		n = len(counts)
	}
	tags := make([]string, n)
	for i := 0; i < n; i++ {
		tags[i] = counts[i].tag
	}
	return tags
}

var kindDisplayNames = map[models.MediaKind]string{
	models.KindMovie: "movies",
	models.KindTV:    "tv",
	models.KindBook:  "books",
}

// Summary renders the profile as the one-line text handed to the reranker.
func (p *Profile) Summary() string {
	var parts []string
	for _, kind := range models.AllKinds() {
		if n := p.RatedByKind[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s avg rating %.1f over %d rated",
				kindDisplayNames[kind], p.AvgRatingByKind[kind], n))
		}
	}
	if len(p.LikedTitles) > 0 {
		parts = append(parts, "favorites: "+strings.Join(p.LikedTitles, ", "))
	}
	if tags := p.TopTags(5); len(tags) > 0 {
		parts = append(parts, "frequent tags: "+strings.Join(tags, ", "))
	}
	if len(parts) == 0 {
		return "sparse profile, few rating signals"
	}
	return strings.Join(parts, "; ")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
