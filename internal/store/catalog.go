// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/cocodzh/watchwhat/internal/models"
)

// GetCatalogPage returns up to limit catalog items after cursor, keyset
// paginated by external ID. The returned cursor is empty when the catalog
// is exhausted. Implements recommend.CatalogProvider.
func (db *DB) GetCatalogPage(ctx context.Context, kind models.MediaKind, cursor string, limit int) ([]models.CatalogItem, string, error) {
	start := time.Now()
	query := `SELECT external_id, title, kind, year, url, metadata FROM catalog WHERE external_id > ?`
	args := []any{cursor}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY external_id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	record("get_catalog_page", start, err)
	if err != nil {
		return nil, "", fmt.Errorf("query catalog page: %w", err)
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		var (
			item     models.CatalogItem
			kindCol  string
			metaJSON string
		)
		if err := rows.Scan(&item.ExternalID, &item.Title, &kindCol, &item.Year, &item.URL, &metaJSON); err != nil {
			return nil, "", fmt.Errorf("scan catalog row: %w", err)
		}
		item.Kind = models.MediaKind(kindCol)
		if metaJSON != "" && metaJSON != "{}" {
			if err := json.Unmarshal([]byte(metaJSON), &item.Metadata); err != nil {
				return nil, "", fmt.Errorf("unmarshal metadata for %s: %w", item.ExternalID, err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate catalog: %w", err)
	}

	next := ""
	if len(items) == limit {
		next = items[len(items)-1].ExternalID
	}
	return items, next, nil
}

// UpsertCatalogItem inserts or replaces one catalog row.
func (db *DB) UpsertCatalogItem(ctx context.Context, item models.CatalogItem) error {
	start := time.Now()
	meta := item.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO catalog (external_id, title, kind, year, url, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			title = excluded.title,
			kind = excluded.kind,
			year = excluded.year,
			url = excluded.url,
			metadata = excluded.metadata`,
		item.ExternalID, item.Title, string(item.Kind), item.Year, item.URL, string(metaJSON))
	record("upsert_catalog", start, err)
	if err != nil {
		return fmt.Errorf("upsert catalog %s: %w", item.ExternalID, err)
	}
	return nil
}

// CountCatalog reports the number of catalog rows, optionally by kind.
func (db *DB) CountCatalog(ctx context.Context, kind models.MediaKind) (int, error) {
	start := time.Now()
	query := `SELECT COUNT(*) FROM catalog`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	var n int
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&n)
	record("count_catalog", start, err)
	if err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}
