// Package store persists the set of listings ever observed, scoped per
// source. The set is append-only: rows are created at first observation
// and never updated or deleted, which is what guarantees at-most-once
// notification across runs.
//
// Exactly one process is assumed to run at a time. The unique index on
// (source_name, listing_key) is the only concurrency guard; concurrent
// runs would at worst duplicate fetch work, not corrupt data.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the seen-listing set backed by SQLite.
type Store struct {
	db *sql.DB
}

// SourceCount is the per-source aggregate returned by CountBySource.
type SourceCount struct {
	Source   string
	Total    int
	LastSeen time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MarkNew records every key as seen for the source and returns, in
// input order, the subset that had never been seen before. Conflicts on
// the unique index are the normal already-seen path, not errors. The
// whole batch is applied in one transaction.
func (s *Store) MarkNew(ctx context.Context, source string, keys []string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("source is required")
	}
	if len(keys) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	now := formatTime(time.Now())
	var fresh []string

	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO seen (source_name, listing_key, first_seen_at)
			VALUES (?, ?, ?)
			ON CONFLICT(source_name, listing_key) DO NOTHING
		`, source, key, now)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("insert seen: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if inserted > 0 {
			fresh = append(fresh, key)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mark new: %w", err)
	}

	return fresh, nil
}

// CountBySource returns per-source totals and the most recent
// first-seen timestamp, ordered by source name.
func (s *Store) CountBySource(ctx context.Context) ([]SourceCount, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_name, COUNT(*), MAX(first_seen_at)
		FROM seen
		GROUP BY source_name
		ORDER BY source_name
	`)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []SourceCount
	for rows.Next() {
		var sc SourceCount
		var lastSeen string
		if err := rows.Scan(&sc.Source, &sc.Total, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		sc.LastSeen, err = parseTime(lastSeen)
		if err != nil {
			return nil, fmt.Errorf("parse first_seen_at: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source counts: %w", err)
	}

	return counts, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return time.Time{}.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}
