// Package gallery owns the persisted list of generated sketches and the
// attempt counter.
package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/kv"
)

// Storage keys. They match the keys the browser client persisted under.
const (
	HistoryKey = "sketch-my-mood-history"
	CountKey   = "sketch-my-mood-count"
)

// Store keeps the gallery (most recent first) and the number of attempts
// consumed. Every mutation writes both keys in one batch before it returns; a
// failed write leaves the in-memory and persisted state unchanged.
type Store struct {
	kv     kv.Store
	logger infra.Logger

	mu       sync.RWMutex
	sketches []domain.MoodSketch
	count    int
}

func NewStore(store kv.Store, logger *infra.Logger) *Store {
	l := infra.NopLogger()
	if logger != nil {
		l = *logger
	}
	return &Store{kv: store, logger: l}
}

// Load replaces the in-memory state with what is persisted. Absent or
// malformed values load as an empty list and a zero counter.
func (s *Store) Load(ctx context.Context) error {
	history, _, err := s.kv.Get(ctx, HistoryKey)
	if err != nil {
		return fmt.Errorf("gallery: load history: %w", err)
	}
	rawCount, _, err := s.kv.Get(ctx, CountKey)
	if err != nil {
		return fmt.Errorf("gallery: load count: %w", err)
	}

	sketches := s.decodeHistory(history)
	count := s.decodeCount(rawCount)

	s.mu.Lock()
	s.sketches = sketches
	s.count = count
	s.mu.Unlock()
	s.logger.Debug().Int("sketches", len(sketches)).Int("count", count).Msg("gallery loaded")
	return nil
}

func (s *Store) decodeHistory(raw string) []domain.MoodSketch {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var sketches []domain.MoodSketch
	if err := json.Unmarshal([]byte(raw), &sketches); err != nil {
		s.logger.Warn().Err(err).Msg("gallery history malformed, starting empty")
		return nil
	}
	for i := range sketches {
		if len(sketches[i].Colors) != domain.PaletteSize {
			sketches[i].Colors = domain.NormalizePalette(sketches[i].Colors)
		}
	}
	return sketches
}

func (s *Store) decodeCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.logger.Warn().Str("value", raw).Msg("gallery count malformed, starting at zero")
		return 0
	}
	return n
}

// Append prepends sketch and consumes one attempt.
func (s *Store) Append(ctx context.Context, sketch domain.MoodSketch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.MoodSketch, 0, len(s.sketches)+1)
	next = append(next, sketch.Clone())
	next = append(next, s.sketches...)
	if err := s.persist(ctx, next, s.count+1); err != nil {
		return err
	}
	s.sketches = next
	s.count++
	return nil
}

// Remove deletes the sketch with the given id. The attempt is not refunded.
func (s *Store) Remove(ctx context.Context, id string) (domain.MoodSketch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.MoodSketch{}, domain.ErrNotFound
	}
	removed := s.sketches[idx]
	next := make([]domain.MoodSketch, 0, len(s.sketches)-1)
	next = append(next, s.sketches[:idx]...)
	next = append(next, s.sketches[idx+1:]...)
	if err := s.persist(ctx, next, s.count); err != nil {
		return domain.MoodSketch{}, err
	}
	s.sketches = next
	return removed.Clone(), nil
}

// ResetAll empties the gallery and zeroes the counter. It returns the
// sketches that were removed.
func (s *Store) ResetAll(ctx context.Context) ([]domain.MoodSketch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, nil, 0); err != nil {
		return nil, err
	}
	removed := s.sketches
	s.sketches = nil
	s.count = 0
	return removed, nil
}

// List returns a copy of the gallery, most recent first.
func (s *Store) List() []domain.MoodSketch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MoodSketch, len(s.sketches))
	for i, sk := range s.sketches {
		out[i] = sk.Clone()
	}
	return out
}

// Get returns the sketch with the given id.
func (s *Store) Get(id string) (domain.MoodSketch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.MoodSketch{}, domain.ErrNotFound
	}
	return s.sketches[idx].Clone(), nil
}

// Count returns the number of attempts consumed.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *Store) indexOf(id string) int {
	for i, sk := range s.sketches {
		if sk.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context, sketches []domain.MoodSketch, count int) error {
	if sketches == nil {
		sketches = []domain.MoodSketch{}
	}
	raw, err := json.Marshal(sketches)
	if err != nil {
		return fmt.Errorf("gallery: encode history: %w", err)
	}
	err = s.kv.SetMany(ctx, map[string]string{
		HistoryKey: string(raw),
		CountKey:   strconv.Itoa(count),
	})
	if err != nil {
		return fmt.Errorf("gallery: persist: %w", err)
	}
	return nil
}
