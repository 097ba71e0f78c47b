// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"github.com/cocodzh/watchwhat/internal/models"
	"github.com/cocodzh/watchwhat/internal/series"
)

// fallbackCatalog is a small curated list served when no catalog has been
// synced yet, so a fresh install still answers with something watchable.
var fallbackCatalog = []models.CatalogItem{
	{ExternalID: "fallback-movie-parasite", Title: "Parasite", Kind: models.KindMovie, Year: 2019,
		URL:      "https://www.douban.com/search?cat=1002&q=Parasite",
		Metadata: map[string]string{models.AttrRating: "9.0", models.AttrGenres: "drama,thriller"}},
	{ExternalID: "fallback-movie-dune-part-two", Title: "Dune: Part Two", Kind: models.KindMovie, Year: 2024,
		URL:      "https://www.douban.com/search?cat=1002&q=Dune%20Part%20Two",
		Metadata: map[string]string{models.AttrRating: "8.8", models.AttrGenres: "sci-fi,adventure"}},
	{ExternalID: "fallback-movie-oppenheimer", Title: "Oppenheimer", Kind: models.KindMovie, Year: 2023,
		URL:      "https://www.douban.com/search?cat=1002&q=Oppenheimer",
		Metadata: map[string]string{models.AttrRating: "8.7", models.AttrGenres: "drama,biography"}},
	{ExternalID: "fallback-movie-past-lives", Title: "Past Lives", Kind: models.KindMovie, Year: 2023,
		URL:      "https://www.douban.com/search?cat=1002&q=Past%20Lives",
		Metadata: map[string]string{models.AttrRating: "8.4", models.AttrGenres: "drama,romance"}},
	{ExternalID: "fallback-movie-green-book", Title: "Green Book", Kind: models.KindMovie, Year: 2018,
		URL:      "https://www.douban.com/search?cat=1002&q=Green%20Book",
		Metadata: map[string]string{models.AttrRating: "8.2", models.AttrGenres: "drama,comedy"}},
	{ExternalID: "fallback-tv-the-bear", Title: "The Bear", Kind: models.KindTV, Year: 2022,
		URL:      "https://www.douban.com/search?cat=1002&q=The%20Bear",
		Metadata: map[string]string{models.AttrRating: "8.7", models.AttrGenres: "drama,comedy"}},
	{ExternalID: "fallback-tv-arcane", Title: "Arcane", Kind: models.KindTV, Year: 2021,
		URL:      "https://www.douban.com/search?cat=1002&q=Arcane",
		Metadata: map[string]string{models.AttrRating: "8.6", models.AttrGenres: "fantasy,animation"}},
	{ExternalID: "fallback-tv-succession", Title: "Succession", Kind: models.KindTV, Year: 2018,
		URL:      "https://www.douban.com/search?cat=1002&q=Succession",
		Metadata: map[string]string{models.AttrRating: "8.5", models.AttrGenres: "drama"}},
	{ExternalID: "fallback-tv-shogun", Title: "Shogun", Kind: models.KindTV, Year: 2024,
		URL:      "https://www.douban.com/search?cat=1002&q=Shogun",
		Metadata: map[string]string{models.AttrRating: "8.6", models.AttrGenres: "drama,history"}},
	{ExternalID: "fallback-tv-severance", Title: "Severance", Kind: models.KindTV, Year: 2022,
		URL:      "https://www.douban.com/search?cat=1002&q=Severance",
		Metadata: map[string]string{models.AttrRating: "8.4", models.AttrGenres: "sci-fi,thriller"}},
	{ExternalID: "fallback-book-xianyi-x", Title: "嫌疑人X的献身", Kind: models.KindBook, Year: 2005,
		URL:      "https://book.douban.com/subject/2307791/",
		Metadata: map[string]string{models.AttrRating: "9.5", models.AttrGenres: "mystery"}},
	{ExternalID: "fallback-book-byh", Title: "白夜行", Kind: models.KindBook, Year: 1999,
		URL:      "https://book.douban.com/subject/3259440/",
		Metadata: map[string]string{models.AttrRating: "9.4", models.AttrGenres: "mystery"}},
	{ExternalID: "fallback-book-ew", Title: "恶意", Kind: models.KindBook, Year: 1996,
		URL:      "https://book.douban.com/subject/1438652/",
		Metadata: map[string]string{models.AttrRating: "9.2", models.AttrGenres: "mystery"}},
	{ExternalID: "fallback-book-three-body", Title: "三体", Kind: models.KindBook, Year: 2008,
		URL:      "https://book.douban.com/subject/2567698/",
		Metadata: map[string]string{models.AttrRating: "8.9", models.AttrGenres: "sci-fi"}},
	{ExternalID: "fallback-book-liulangdiqiu", Title: "流浪地球", Kind: models.KindBook, Year: 2000,
		URL:      "https://book.douban.com/subject/26292448/",
		Metadata: map[string]string{models.AttrRating: "8.6", models.AttrGenres: "sci-fi"}},
}

// fallbackCandidates filters the editorial catalog against history, one
// representative per series, and returns the pool plus the dedupe count.
func fallbackCandidates(profile *Profile, kind models.MediaKind) ([]Candidate, int) {
	var (
		pool    []Candidate
		deduped int
		emitted = make(map[string]bool)
	)
	for key := range profile.SeenSeriesKeys {
		emitted[key] = true
	}
	for _, item := range fallbackCatalog {
		if kind != "" && item.Kind != kind {
			continue
		}
		if profile.Seen(item.ExternalID) {
			continue
		}
		identity := series.BuildIdentity(item.Title, item.Kind)
		if emitted[identity.Key] {
			deduped++
			continue
		}
		emitted[identity.Key] = true
		pool = append(pool, newCandidate(item, identity))
	}
	return pool, deduped
}
