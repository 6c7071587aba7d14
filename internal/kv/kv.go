// Package kv provides the durable key-value backends that hold the gallery
// state and stored provider credentials.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/storage"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store closed")

// Store is a string-keyed, string-valued durable map. SetMany writes all
// entries or none of them.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func sortedKeys(entries map[string]string) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Open builds the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case infra.StoreBackendMemory:
		return NewMemoryStore(), nil
	case infra.StoreBackendFile, "":
		fs, err := storage.NewFileStore(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		return NewFileStore(fs), nil
	case infra.StoreBackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case infra.StoreBackendPostgres:
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(ctx, infra.NewSQLRunner(pool, logger), pool.Close)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	case infra.StoreBackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("kv: unsupported backend %q", cfg.StoreBackend)
	}
}
