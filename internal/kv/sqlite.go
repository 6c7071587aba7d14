package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/sqlinline"
)

// SQLiteStore keeps entries in a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// kv_entries table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("kv: sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("kv: ensure sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("kv: open sqlite: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqlinline.QSQLiteCreateKVTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv: create sqlite table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, sqlinline.QSQLiteSelectKVEntry, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: sqlite get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, sqlinline.QSQLiteUpsertKVEntry, key, value); err != nil {
		return fmt.Errorf("kv: sqlite set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kv: sqlite begin: %w", err)
	}
	for _, key := range sortedKeys(entries) {
		if _, err := tx.ExecContext(ctx, sqlinline.QSQLiteUpsertKVEntry, key, entries[key]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("kv: sqlite set %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kv: sqlite commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, sqlinline.QSQLiteDeleteKVEntry, key); err != nil {
		return fmt.Errorf("kv: sqlite delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
