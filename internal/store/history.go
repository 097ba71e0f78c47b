// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/cocodzh/watchwhat/internal/models"
)

// GetHistory returns the synced history, optionally filtered by kind.
// Implements recommend.HistoryProvider.
func (db *DB) GetHistory(ctx context.Context, kind models.MediaKind) ([]models.HistoryItem, error) {
	start := time.Now()
	query := `SELECT external_id, title, kind, rating, consumed_at, tags, url, source FROM history`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY consumed_at DESC, external_id ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	record("get_history", start, err)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var items []models.HistoryItem
	for rows.Next() {
		item, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return items, nil
}

// UpsertHistoryItem inserts or replaces one history row. The sync scraper
// calls this for every fetched interaction.
func (db *DB) UpsertHistoryItem(ctx context.Context, item models.HistoryItem) error {
	start := time.Now()
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	var rating any
	if item.Rating != nil {
		rating = *item.Rating
	}
	var consumedAt any
	if item.ConsumedAt != nil {
		consumedAt = item.ConsumedAt.UTC()
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO history (external_id, title, kind, rating, consumed_at, tags, url, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			title = excluded.title,
			kind = excluded.kind,
			rating = excluded.rating,
			consumed_at = excluded.consumed_at,
			tags = excluded.tags,
			url = excluded.url,
			source = excluded.source`,
		item.ExternalID, item.Title, string(item.Kind), rating, consumedAt, string(tags), item.URL, item.Source)
	record("upsert_history", start, err)
	if err != nil {
		return fmt.Errorf("upsert history %s: %w", item.ExternalID, err)
	}
	return nil
}

// CountHistory reports the number of history rows, optionally by kind.
func (db *DB) CountHistory(ctx context.Context, kind models.MediaKind) (int, error) {
	start := time.Now()
	query := `SELECT COUNT(*) FROM history`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	var n int
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&n)
	record("count_history", start, err)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

func scanHistoryRow(rows *sql.Rows) (models.HistoryItem, error) {
	var (
		item       models.HistoryItem
		kind       string
		rating     sql.NullFloat64
		consumedAt sql.NullTime
		tagsJSON   string
	)
	if err := rows.Scan(&item.ExternalID, &item.Title, &kind, &rating, &consumedAt, &tagsJSON, &item.URL, &item.Source); err != nil {
		return item, fmt.Errorf("scan history row: %w", err)
	}
	item.Kind = models.MediaKind(kind)
	if rating.Valid {
		item.Rating = &rating.Float64
	}
	if consumedAt.Valid {
		t := consumedAt.Time
		item.ConsumedAt = &t
	}
	if tagsJSON != "" && tagsJSON != "[]" {
		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
			return item, fmt.Errorf("unmarshal tags for %s: %w", item.ExternalID, err)
		}
	}
	return item, nil
}
