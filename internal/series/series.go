// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package series

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cocodzh/watchwhat/internal/models"
)

// Identity is the derived series identity of a single title.
type Identity struct {
	// Key is the stable series key, prefixed with the media kind
	// (e.g. "book:海贼王" compacted).
	Key string

	// DisplayTitle is the canonical display title for the series.
	DisplayTitle string

	// RawTitle is the normalized input title.
	RawTitle string

	// IsVariant reports whether the input title looked like a volume, season,
	// or regional variant of the series rather than its canonical title.
	IsVariant bool
}

// t2s folds the traditional Chinese characters that appear in synced titles
// to their simplified forms. Intentionally small: it only needs to cover the
// character set seen in practice, not be a full converter.
var t2s = map[rune]rune{
	'島': '岛', '來': '来', '訪': '访', '與': '与', '雲': '云', '風': '风',
	'說': '说', '讀': '读', '寫': '写', '書': '书', '門': '门', '開': '开',
	'關': '关', '國': '国', '體': '体', '學': '学', '術': '术', '業': '业',
	'畫': '画', '劍': '剑', '龍': '龙', '貓': '猫', '馬': '马', '劇': '剧',
	'樂': '乐', '愛': '爱', '憶': '忆', '歷': '历', '時': '时', '點': '点',
	'頭': '头', '發': '发', '變': '变', '記': '记', '偵': '侦', '謎': '谜',
	'獄': '狱', '處': '处', '後': '后', '臺': '台', '萬': '万', '為': '为',
	'無': '无', '麵': '面', '們': '们', '這': '这', '個': '个', '裡': '里',
	'裏': '里', '過': '过',
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile("[`'\"“”‘’·・･,，.。:：;；!?！？()\\[\\]{}<>《》【】/\\\\|+*&^%$#@~\\-]+")

	// suffixRes match trailing volume/season/part markers, applied repeatedly
	// so "Vol.1 Part 2" collapses fully.
	suffixRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[\s:：\-–—]*第?\s*\d+\s*[卷册部季篇话集章巻]$`),
		regexp.MustCompile(`(?i)[\s:：\-–—]*vol(?:ume)?\.?\s*\d+$`),
		regexp.MustCompile(`(?i)[\s:：\-–—]*#\s*\d+$`),
		regexp.MustCompile(`(?i)[\s:：\-–—]*season\s*\d+$`),
		regexp.MustCompile(`(?i)[\s:：\-–—]*s\d+$`),
		regexp.MustCompile(`(?i)[\s:：\-–—]*part\s*\d+$`),
		regexp.MustCompile(`[\s:：\-–—]+\d{1,3}$`),
	}
)

// alias maps a compacted title key to its canonical series suffix and
// display title, grouping cross-language editions of the same series.
type alias struct {
	keySuffix    string
	displayTitle string
}

var aliases = buildAliases()

func buildAliases() map[string]alias {
	entries := []struct {
		title string
		a     alias
	}{
		{"one piece", alias{"series:one_piece", "海贼王"}},
		{"onepiece", alias{"series:one_piece", "海贼王"}},
		{"ワンピース", alias{"series:one_piece", "海贼王"}},
		{"海贼王", alias{"series:one_piece", "海贼王"}},
		{"航海王", alias{"series:one_piece", "海贼王"}},
		{"名探偵に甘美なる死を", alias{"series:amai_shi_for_detective", "献给名侦探的甜美死亡"}},
		{"献给名侦探的甜美死亡", alias{"series:amai_shi_for_detective", "献给名侦探的甜美死亡"}},
		{"そして誰も死ななかった", alias{"series:soshite_daremo_shinanakatta", "无人逝去"}},
		{"无人逝去", alias{"series:soshite_daremo_shinanakatta", "无人逝去"}},
	}

	m := make(map[string]alias, len(entries))
	for _, e := range entries {
		m[compactKey(e.title)] = e.a
	}
	return m
}

func normalizeScript(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := t2s[r]; ok {
			r = folded
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeText(s string) string {
	normalized := norm.NFKC.String(s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(normalized, " "))
}

func compactKey(s string) string {
	k := strings.ToLower(normalizeScript(normalizeText(s)))
	k = punctRe.ReplaceAllString(k, " ")
	return whitespaceRe.ReplaceAllString(k, "")
}

// stripSuffix removes trailing volume/season markers. Returns the stripped
// title and whether anything was removed.
func stripSuffix(title string) (string, bool) {
	current := normalizeText(title)
	changed := false
	for range 3 {
		previous := current
		for _, re := range suffixRes {
			current = re.ReplaceAllString(current, "")
		}
		current = strings.TrimSpace(strings.Trim(current, " -_:：·."))
		if current == previous {
			break
		}
		changed = true
	}
	if current == "" {
		return normalizeText(title), changed
	}
	return current, changed
}

// BuildIdentity derives the series identity for a title of the given kind.
func BuildIdentity(title string, kind models.MediaKind) Identity {
	rawTitle := normalizeText(title)
	stripped, removedSuffix := stripSuffix(rawTitle)
	strippedKey := compactKey(stripped)

	if a, ok := aliases[strippedKey]; ok {
		isVariant := removedSuffix || compactKey(rawTitle) != compactKey(a.displayTitle)
		return Identity{
			Key:          string(kind) + ":" + a.keySuffix,
			DisplayTitle: a.displayTitle,
			RawTitle:     rawTitle,
			IsVariant:    isVariant,
		}
	}

	baseKey := strippedKey
	if baseKey == "" {
		baseKey = compactKey(rawTitle)
	}
	if baseKey == "" {
		baseKey = "unknown"
	}
	display := stripped
	if display == "" {
		display = rawTitle
	}
	return Identity{
		Key:          string(kind) + ":" + baseKey,
		DisplayTitle: display,
		RawTitle:     rawTitle,
		IsVariant:    removedSuffix,
	}
}
