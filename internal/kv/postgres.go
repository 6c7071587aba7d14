package kv

import (
	"context"
	"fmt"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/sqlinline"
)

// PostgresStore keeps entries in the kv_entries table through marked queries.
type PostgresStore struct {
	sql     infra.SQLExecutor
	onClose func()
}

// NewPostgresStore ensures the table exists. onClose, when set, releases the
// underlying pool.
func NewPostgresStore(ctx context.Context, exec infra.SQLExecutor, onClose func()) (*PostgresStore, error) {
	if _, err := exec.Exec(ctx, sqlinline.QCreateKVTable); err != nil {
		return nil, fmt.Errorf("kv: create postgres table: %w", err)
	}
	return &PostgresStore{sql: exec, onClose: onClose}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := p.sql.QueryRow(ctx, sqlinline.QSelectKVEntry, key).Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv: postgres get %q: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QUpsertKVEntry, key, value); err != nil {
		return fmt.Errorf("kv: postgres set %q: %w", key, err)
	}
	return nil
}

// SetMany upserts every entry in one statement.
func (p *PostgresStore) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	keys := sortedKeys(entries)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = entries[k]
	}
	if _, err := p.sql.Exec(ctx, sqlinline.QUpsertKVEntries, keys, values); err != nil {
		return fmt.Errorf("kv: postgres set %d entries: %w", len(keys), err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QDeleteKVEntry, key); err != nil {
		return fmt.Errorf("kv: postgres delete %q: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	if p.onClose != nil {
		p.onClose()
	}
	return nil
}
