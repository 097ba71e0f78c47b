// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package llm

import (
	"errors"
	"strings"
)

// extractJSON pulls the JSON object out of model output. Models in JSON
// mode still occasionally wrap the object in ``` fences or lead with a
// sentence, so this trims fences and slices from the first '{' to the last
// '}' instead of failing.
func extractJSON(content string) ([]byte, error) {
	raw := strings.TrimSpace(content)
	if strings.HasPrefix(raw, "```") {
		raw = strings.Trim(raw, "`")
		if len(raw) >= 4 && strings.EqualFold(raw[:4], "json") {
			raw = strings.TrimSpace(raw[4:])
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("llm response did not contain a JSON object")
	}
	return []byte(raw[start : end+1]), nil
}
