// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/cocodzh/watchwhat/internal/models"
)

// Intent is the structured form of a free-text query. Built fresh per
// request, never persisted.
type Intent struct {
	// RawText is the full query, including phrases the parser could not map.
	RawText string `json:"raw_text"`

	// Kinds are the strict media kinds the query names. Empty means all.
	Kinds []models.MediaKind `json:"kinds,omitempty"`

	// IncludeTags are preferred topic/genre tags ("mystery", "sci-fi").
	IncludeTags []string `json:"include_tags,omitempty"`

	// ExcludeGenres are genres the query rules out ("horror").
	ExcludeGenres []string `json:"exclude_genres,omitempty"`

	// MaxRuntimeMinutes bounds candidate runtime. 0 means no bound.
	MaxRuntimeMinutes int `json:"max_runtime_minutes,omitempty"`

	// RecentYears restricts to works released within the last N years.
	// 0 means no recency requirement.
	RecentYears int `json:"recent_years,omitempty"`

	// Mood is a coarse tonal preference ("light", "dark"). Empty if unstated.
	Mood string `json:"mood,omitempty"`

	// ParseConfidence is the fraction of the query mapped to known
	// constraint types, in [0, 1]. Empty queries parse with confidence 1.0.
	ParseConfidence float64 `json:"parse_confidence"`
}

// HasConstraints reports whether any constraint or preference was parsed.
func (in Intent) HasConstraints() bool {
	return len(in.Kinds) > 0 || len(in.IncludeTags) > 0 || len(in.ExcludeGenres) > 0 ||
		in.MaxRuntimeMinutes > 0 || in.RecentYears > 0 || in.Mood != ""
}

// WantsKind reports whether kind satisfies the strict-kind constraint.
func (in Intent) WantsKind(kind models.MediaKind) bool {
	if len(in.Kinds) == 0 {
		return true
	}
	for _, k := range in.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Bounded bilingual vocabulary. Matching is substring-based over the
// lowercased query, which handles Chinese text (no word boundaries) and is
// close enough for the short English phrases users actually type.
var (
	kindKeywords = map[models.MediaKind][]string{
		models.KindBook:  {"小说", "书籍", "看书", "阅读", "读书", "漫画", "book", "novel", "manga", "read something"},
		models.KindMovie: {"电影", "影片", "movie", "film"},
		models.KindTV:    {"电视剧", "美剧", "日剧", "韩剧", "连续剧", "剧集", "番剧", "tv show", "tv series", "series", "season of"},
	}

	topicKeywords = map[string][]string{
		"mystery": {"推理", "悬疑", "侦探", "探案", "本格", "mystery", "detective", "whodunit"},
		"sci-fi":  {"科幻", "赛博", "太空", "宇宙", "未来", "sci-fi", "scifi", "science fiction", "cyberpunk", "space"},
		"fantasy": {"奇幻", "魔法", "玄幻", "冒险", "fantasy", "magic", "adventure"},
	}

	moodKeywords = map[string][]string{
		"light": {"轻松", "治愈", "温馨", "搞笑", "喜剧", "light", "lighthearted", "cozy", "feel-good", "funny", "comedy"},
		"dark":  {"黑暗", "致郁", "沉重", "压抑", "dark", "bleak", "heavy", "gritty"},
	}

	excludableGenres = map[string][]string{
		"horror":      {"恐怖", "惊悚", "horror", "scary"},
		"romance":     {"爱情", "言情", "恋爱", "romance", "romantic"},
		"documentary": {"纪录片", "documentary", "documentaries"},
	}

	relaxKeywords = []string{"都可", "都行", "都可以", "不限", "随意", "随便", "whatever", "any"}

	excludeMarkers = []string{"不要", "别看", "排除", "讨厌", "不喜欢", "no ", "not ", "without ", "avoid ", "skip "}

	recentKeywords = []string{"最近", "近期", "新出", "新作", "recent", "new release", "newly released", "latest"}
)

var (
	hoursEnRe   = regexp.MustCompile(`(?i)(?:under|within|less than|at most|max)\s+(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`)
	minutesEnRe = regexp.MustCompile(`(?i)(?:under|within|less than|at most|max)\s+(\d+)\s*(?:minutes?|mins?)\b`)
	hoursZhRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*个?小时(?:以内|以下|之内)?`)
	minutesZhRe = regexp.MustCompile(`(\d+)\s*分钟(?:以内|以下|之内)?`)
	yearsEnRe   = regexp.MustCompile(`(?i)(?:last|past)\s+(\d+)\s*years?\b`)
	yearsZhRe   = regexp.MustCompile(`近(\d+)年`)
)

// defaultRecentYears applies when the query says "recent" without a number.
const defaultRecentYears = 5

// ParseIntent extracts structured constraints from a free-text query.
// Blank input means no preference expressed and parses to a neutral intent
// with confidence 1.0. Deterministic for a fixed vocabulary.
func ParseIntent(query string) Intent {
	raw := strings.TrimSpace(query)
	intent := Intent{RawText: raw}
	if raw == "" {
		intent.ParseConfidence = 1.0
		return intent
	}

	compact := strings.ToLower(raw)
	matched := 0

	kinds := make(map[models.MediaKind]bool)
	for kind, keywords := range kindKeywords {
		for _, kw := range keywords {
			if strings.Contains(compact, kw) {
				kinds[kind] = true
				matched += len([]rune(kw))
			}
		}
	}
	for _, kind := range models.AllKinds() {
		if kinds[kind] {
			intent.Kinds = append(intent.Kinds, kind)
		}
	}

	// Excluded genres are consumed first so "no horror" does not also count
	// as a horror preference.
	remaining := compact
	for genre, keywords := range excludableGenres {
		for _, kw := range keywords {
			for _, marker := range excludeMarkers {
				phrase := marker + kw
				if strings.Contains(remaining, phrase) {
					intent.ExcludeGenres = append(intent.ExcludeGenres, genre)
					matched += len([]rune(phrase))
					remaining = strings.ReplaceAll(remaining, phrase, " ")
					break
				}
			}
		}
	}
	sort.Strings(intent.ExcludeGenres)
	intent.ExcludeGenres = dedupeStrings(intent.ExcludeGenres)

	tags := make(map[string]bool)
	for tag, keywords := range topicKeywords {
		for _, kw := range keywords {
			if strings.Contains(remaining, kw) {
				tags[tag] = true
				matched += len([]rune(kw))
			}
		}
	}
	for _, kw := range relaxKeywords {
		if strings.Contains(remaining, kw) {
			tags = map[string]bool{}
			matched += len([]rune(kw))
		}
	}
	for tag := range tags {
		intent.IncludeTags = append(intent.IncludeTags, tag)
	}
	sort.Strings(intent.IncludeTags)

	for mood, keywords := range moodKeywords {
		for _, kw := range keywords {
			if strings.Contains(remaining, kw) {
				if intent.Mood == "" || mood < intent.Mood {
					intent.Mood = mood
				}
				matched += len([]rune(kw))
			}
		}
	}

	if m := hoursEnRe.FindStringSubmatch(remaining); m != nil {
		intent.MaxRuntimeMinutes = parseHoursToMinutes(m[1])
		matched += len([]rune(m[0]))
	} else if m := hoursZhRe.FindStringSubmatch(remaining); m != nil {
		intent.MaxRuntimeMinutes = parseHoursToMinutes(m[1])
		matched += len([]rune(m[0]))
	}
	if m := minutesEnRe.FindStringSubmatch(remaining); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && (intent.MaxRuntimeMinutes == 0 || n < intent.MaxRuntimeMinutes) {
			intent.MaxRuntimeMinutes = n
		}
		matched += len([]rune(m[0]))
	} else if m := minutesZhRe.FindStringSubmatch(remaining); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && (intent.MaxRuntimeMinutes == 0 || n < intent.MaxRuntimeMinutes) {
			intent.MaxRuntimeMinutes = n
		}
		matched += len([]rune(m[0]))
	}

	if m := yearsEnRe.FindStringSubmatch(remaining); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			intent.RecentYears = n
		}
		matched += len([]rune(m[0]))
	} else if m := yearsZhRe.FindStringSubmatch(remaining); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			intent.RecentYears = n
		}
		matched += len([]rune(m[0]))
	} else {
		for _, kw := range recentKeywords {
			if strings.Contains(remaining, kw) {
				intent.RecentYears = defaultRecentYears
				matched += len([]rune(kw))
				break
			}
		}
	}

	intent.ParseConfidence = parseConfidence(compact, matched)
	return intent
}

// MergeAnswer appends a clarification answer to the original query and
// re-parses the combined text, so the answer can only add constraints.
func MergeAnswer(originalQuery, answer string) Intent {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ParseIntent(originalQuery)
	}
	merged := strings.TrimSpace(originalQuery)
	if merged == "" {
		merged = answer
	} else {
		merged = merged + "; " + answer
	}
	return ParseIntent(merged)
}

// parseConfidence is the matched fraction of non-space runes, clamped to
// [0, 1]. Matching more of the query never lowers the value.
func parseConfidence(compact string, matchedRunes int) float64 {
	total := 0
	for _, r := range compact {
		if !unicode.IsSpace(r) {
			total++
		}
	}
	if total == 0 {
		return 1.0
	}
	conf := float64(matchedRunes) / float64(total)
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

func parseHoursToMinutes(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return int(f * 60)
}

func dedupeStrings(in []string) []string {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
