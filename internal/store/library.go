// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cocodzh/watchwhat/internal/models"
)

// ListLibrary returns a page of history for the library view, most recent
// first, plus the total row count for the filter.
func (db *DB) ListLibrary(ctx context.Context, kind models.MediaKind, limit, offset int) ([]models.HistoryItem, int, error) {
	total, err := db.CountHistory(ctx, kind)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	query := `SELECT external_id, title, kind, rating, consumed_at, tags, url, source FROM history`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY consumed_at DESC, external_id ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	record("list_library", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("query library: %w", err)
	}
	defer rows.Close()

	var items []models.HistoryItem
	for rows.Next() {
		item, err := scanHistoryRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate library: %w", err)
	}
	return items, total, nil
}
