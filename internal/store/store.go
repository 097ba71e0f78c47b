// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package store persists the user's history and the candidate catalog in a
// local SQLite database. It implements the recommend package's
// HistoryProvider and CatalogProvider interfaces; the history-sync scraper
// writes through the same upsert surface.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cocodzh/watchwhat/internal/config"
	"github.com/cocodzh/watchwhat/internal/logging"
	"github.com/cocodzh/watchwhat/internal/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	external_id TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	kind        TEXT NOT NULL,
	rating      REAL,
	consumed_at TIMESTAMP,
	tags        TEXT NOT NULL DEFAULT '[]',
	url         TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_history_kind ON history(kind);
CREATE INDEX IF NOT EXISTS idx_history_consumed_at ON history(consumed_at);

CREATE TABLE IF NOT EXISTS catalog (
	external_id TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	kind        TEXT NOT NULL,
	year        INTEGER NOT NULL DEFAULT 0,
	url         TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_catalog_kind_id ON catalog(kind, external_id);
`

// DB wraps the SQLite connection and provides data access methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at cfg.Path and initializes the
// schema. The parent directory is created if missing.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.Path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent requests.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.initialize(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	log := logging.Component("store")
	log.Info().Str("path", cfg.Path).Msg("Database opened")
	return db, nil
}

// NewMemory opens an in-memory database, used by tests.
func NewMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	db := &DB{conn: conn}
	if err := db.initialize(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping verifies the connection, used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// record wraps a query with duration and error metrics.
func record(operation string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, time.Since(start), err)
}
