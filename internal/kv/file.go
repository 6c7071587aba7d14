package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/storage"
)

// journalKey holds a SetMany batch until every entry has been written.
const journalKey = ".kv-batch.json"

type objectStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// FileStore keeps one file per key beneath a storage.FileStore root. A
// SetMany batch is committed by writing the journal; a batch whose apply was
// interrupted is finished before the next operation.
type FileStore struct {
	files objectStore
	mu    sync.Mutex
}

func NewFileStore(files *storage.FileStore) *FileStore {
	return &FileStore{files: files}
}

func (f *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.replayLocked(ctx); err != nil {
		return "", false, err
	}
	data, err := f.files.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

func (f *FileStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.replayLocked(ctx); err != nil {
		return err
	}
	_, err := f.files.Write(ctx, key, []byte(value))
	return err
}

func (f *FileStore) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.replayLocked(ctx); err != nil {
		return err
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("kv: encode batch: %w", err)
	}
	if _, err := f.files.Write(ctx, journalKey, raw); err != nil {
		return fmt.Errorf("kv: write batch journal: %w", err)
	}
	// The batch is committed once the journal is on disk.
	_ = f.replayLocked(ctx)
	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.replayLocked(ctx); err != nil {
		return err
	}
	return f.files.Delete(ctx, key)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) replayLocked(ctx context.Context) error {
	raw, err := f.files.Read(ctx, journalKey)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("kv: read batch journal: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("kv: decode batch journal: %w", err)
	}
	for _, key := range sortedKeys(entries) {
		if _, err := f.files.Write(ctx, key, []byte(entries[key])); err != nil {
			return fmt.Errorf("kv: apply batch %q: %w", key, err)
		}
	}
	if err := f.files.Delete(ctx, journalKey); err != nil {
		return fmt.Errorf("kv: clear batch journal: %w", err)
	}
	return nil
}
