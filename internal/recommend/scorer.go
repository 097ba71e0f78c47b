// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"sort"
	"strconv"
	"time"

	"github.com/cocodzh/watchwhat/internal/models"
)

// moodTags maps a coarse mood preference onto candidate genre tags.
var moodTags = map[string][]string{
	"light": {"comedy", "animation", "family", "romance"},
	"dark":  {"thriller", "crime", "horror", "war"},
}

// historyTagWeight is the preference weight of a tag learned from history,
// relative to 1.0 for a tag the query asked for explicitly.
const historyTagWeight = 0.5

// recencyDecadeSpan is the linear falloff window for out-of-range years
// when the query asks for recent works.
const recencyDecadeSpan = 10.0

// scoreCandidates computes local relevance for every candidate and returns
// them ordered by score descending, ties broken by external ID ascending.
// Hard constraint violations are recorded and penalized, never dropped.
// Missing metadata contributes zero, not an error. The ordering is fully
// deterministic for a fixed (candidates, intent, profile, now).
func scoreCandidates(candidates []Candidate, intent Intent, profile *Profile, now time.Time, cfg Config) []ScoredCandidate {
	preferred := preferredTags(intent, profile)

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		s := ScoredCandidate{Candidate: c}

		tagScore := tagOverlap(c.ReasonTags, preferred)
		ratingPrior := ratingPrior(c)
		recencyPrior := recencyPrior(c, intent, now)

		constraintScore := 1.0
		if !intent.WantsKind(c.Item.Kind) {
			s.ViolatedConstraints = append(s.ViolatedConstraints, "kind")
		}
		if intent.MaxRuntimeMinutes > 0 {
			if raw := c.Item.Attr(models.AttrRuntimeMinutes); raw != "" {
				if runtime, err := strconv.Atoi(raw); err == nil && runtime > intent.MaxRuntimeMinutes {
					s.ViolatedConstraints = append(s.ViolatedConstraints, "max_runtime")
				}
			}
		}
		for _, genre := range intent.ExcludeGenres {
			if hasTag(c.ReasonTags, genre) {
				s.ViolatedConstraints = append(s.ViolatedConstraints, "exclude_genre:"+genre)
			}
		}

		s.LocalScore = cfg.Weights.Tags*tagScore +
			cfg.Weights.Constraints*constraintScore +
			cfg.Weights.Rating*ratingPrior +
			cfg.Weights.Recency*recencyPrior
		if s.Violates() {
			s.LocalScore *= cfg.HardViolationPenalty
		}
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].LocalScore != scored[j].LocalScore {
			return scored[i].LocalScore > scored[j].LocalScore
		}
		return scored[i].Candidate.Item.ExternalID < scored[j].Candidate.Item.ExternalID
	})
	return scored
}

// preferredTags merges explicit query tags (weight 1.0), mood-implied tags,
// and history tags (weight scaled by frequency, capped at historyTagWeight).
func preferredTags(intent Intent, profile *Profile) map[string]float64 {
	prefs := make(map[string]float64)

	maxCount := 0
	for _, count := range profile.TagCounts {
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount > 0 {
		for tag, count := range profile.TagCounts {
			prefs[tag] = historyTagWeight * float64(count) / float64(maxCount)
		}
	}
	for _, tag := range moodTags[intent.Mood] {
		if prefs[tag] < historyTagWeight {
			prefs[tag] = historyTagWeight
		}
	}
	for _, tag := range intent.IncludeTags {
		prefs[tag] = 1.0
	}
	// Excluded genres are handled as violations, never as a preference.
	for _, genre := range intent.ExcludeGenres {
		delete(prefs, genre)
	}
	return prefs
}

// tagOverlap is the mean preference weight over the candidate's tags, in
// [0, 1]. Untagged candidates score zero, which is neutral, not penal.
func tagOverlap(tags []string, preferred map[string]float64) float64 {
	if len(tags) == 0 || len(preferred) == 0 {
		return 0
	}
	sum := 0.0
	for _, tag := range tags {
		sum += preferred[tag]
	}
	return sum / float64(len(tags))
}

// ratingPrior maps the catalog rating attribute (10-point scale) to [0, 1].
func ratingPrior(c Candidate) float64 {
	raw := c.Item.Attr(models.AttrRating)
	if raw == "" {
		return 0
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil || rating < 0 {
		return 0
	}
	if rating > 10 {
		rating = 10
	}
	return rating / 10
}

// recencyPrior rewards release years inside the requested window and decays
// linearly over a decade outside it. Neutral when no recency was requested
// or the year is unknown.
func recencyPrior(c Candidate, intent Intent, now time.Time) float64 {
	if intent.RecentYears <= 0 || c.Item.Year == 0 {
		return 0
	}
	cutoff := now.Year() - intent.RecentYears
	if c.Item.Year >= cutoff {
		return 1.0
	}
	age := float64(cutoff - c.Item.Year)
	if age >= recencyDecadeSpan {
		return 0
	}
	return 1.0 - age/recencyDecadeSpan
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

// topK returns the first k scored candidates. Violators are already sunk by
// the scorer's penalty, so they only surface when nothing better remains.
func topK(scored []ScoredCandidate, k int) []ScoredCandidate {
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
