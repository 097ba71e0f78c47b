// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package models defines the shared domain entities of WatchWhat.
//
// Two entity families live here:
//
//   - Synced data: HistoryItem rows written by the history-sync collaborator
//     and read-only to the recommendation core.
//   - Reference data: CatalogItem rows describing items the user may not have
//     seen yet. Catalog metadata is best-effort and may be incomplete; readers
//     must treat missing attributes as neutral, never as errors.
//
// Request-scoped entities (candidates, intents, scored candidates,
// recommendations) belong to the recommend package, not here.
package models
