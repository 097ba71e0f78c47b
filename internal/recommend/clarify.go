// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package recommend

// Follow-up question templates, keyed by the weakest dimension of the
// parsed intent.
const (
	questionKind    = "Are you in the mood for a movie, a series, or a book? A time range helps too (say, last 5 years)."
	questionTaste   = "What are you in the mood for? A genre or a vibe helps (mystery, sci-fi, something light)."
	questionGeneric = "What are you in the mood for?"
)

// shouldClarify gates the one-turn follow-up: confidence below the
// threshold and the request still has its turn available.
func shouldClarify(confidence, threshold float64, allowFollowup bool) bool {
	return allowFollowup && confidence < threshold
}

// clarifyQuestion picks the follow-up question. A model-suggested question
// wins; otherwise the question targets the intent dimension that parsed
// weakest.
func clarifyQuestion(modelSuggested string, intent Intent) string {
	if modelSuggested != "" {
		return modelSuggested
	}
	switch {
	case len(intent.Kinds) == 0:
		return questionKind
	case len(intent.IncludeTags) == 0 && intent.Mood == "":
		return questionTaste
	default:
		return questionGeneric
	}
}
