// Package pipeline runs one mood through refinement and image generation and
// records the result in the gallery.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/gallery"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/metrics"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/image"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/prompt"
)

const (
	DefaultLimit       = 3
	DefaultStepTimeout = 30 * time.Second
)

// BlobDeleter removes stored image objects when their sketch goes away.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Refiner     prompt.Refiner
	Generator   image.Generator
	Gallery     *gallery.Store
	Blobs       BlobDeleter
	Styles      []domain.Style
	Limit       int
	StepTimeout time.Duration
	Logger      *infra.Logger
	Now         func() time.Time
	NewID       func() string
}

// Input is one submission. PresetMood, when set, wins over the free text.
type Input struct {
	Mood       string `json:"mood"`
	PresetMood string `json:"presetMood"`
	StyleID    string `json:"style"`
}

// EffectiveMood returns the mood the pipeline will use.
func (in Input) EffectiveMood() string {
	if preset := strings.TrimSpace(in.PresetMood); preset != "" {
		return preset
	}
	return strings.TrimSpace(in.Mood)
}

// Pipeline allows a single run at a time. A second caller is rejected with
// ErrGenerationInProgress instead of waiting.
type Pipeline struct {
	refiner   prompt.Refiner
	generator image.Generator
	gallery   *gallery.Store
	blobs     BlobDeleter
	styles    []domain.Style
	limit     int
	timeout   time.Duration
	logger    infra.Logger
	now       func() time.Time
	newID     func() string

	mu        sync.Mutex
	state     domain.PipelineState
	lastError string
}

func New(opts Options) (*Pipeline, error) {
	if opts.Refiner == nil {
		return nil, errors.New("pipeline: refiner is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	if opts.Gallery == nil {
		return nil, errors.New("pipeline: gallery is required")
	}
	p := &Pipeline{
		refiner:   opts.Refiner,
		generator: opts.Generator,
		gallery:   opts.Gallery,
		blobs:     opts.Blobs,
		styles:    opts.Styles,
		limit:     opts.Limit,
		timeout:   opts.StepTimeout,
		logger:    infra.NopLogger(),
		now:       opts.Now,
		newID:     opts.NewID,
		state:     domain.StateIdle,
	}
	if opts.Logger != nil {
		p.logger = *opts.Logger
	}
	if len(p.styles) == 0 {
		p.styles = domain.DefaultStyles
	}
	if p.limit <= 0 {
		p.limit = DefaultLimit
	}
	if p.timeout <= 0 {
		p.timeout = DefaultStepTimeout
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p, nil
}

// Limit returns the number of attempts allowed.
func (p *Pipeline) Limit() int { return p.limit }

// Generate runs one submission end to end.
func (p *Pipeline) Generate(ctx context.Context, in Input) (*domain.MoodSketch, error) {
	mood := in.EffectiveMood()

	p.mu.Lock()
	if p.busyLocked() {
		p.mu.Unlock()
		metrics.GenerationsTotal.WithLabelValues("busy").Inc()
		return nil, domain.ErrGenerationInProgress
	}
	if mood == "" {
		p.state = domain.StateIdle
		p.lastError = UserMessage(domain.ErrEmptyMood, p.limit)
		p.mu.Unlock()
		metrics.GenerationsTotal.WithLabelValues("empty_mood").Inc()
		return nil, domain.ErrEmptyMood
	}
	if p.gallery.Count() >= p.limit {
		p.state = domain.StateIdle
		p.lastError = UserMessage(domain.ErrQuotaExceeded, p.limit)
		p.mu.Unlock()
		metrics.GenerationsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, domain.ErrQuotaExceeded
	}
	p.state = domain.StateRefining
	p.lastError = ""
	p.mu.Unlock()

	return p.run(ctx, mood, in.StyleID)
}

// errAborted is reported when a backend panics or the run exits without
// reaching a terminal state.
var errAborted = errors.New("Failed to generate. Try again.")

// run executes the busy part of a generation. It always leaves the pipeline
// in a non-busy state, even when a backend panics.
func (p *Pipeline) run(ctx context.Context, mood, styleID string) (out *domain.MoodSketch, err error) {
	style := domain.ResolveStyleName(p.styles, styleID)
	log := p.logger.With().Str("mood", mood).Str("style", style).Logger()

	defer func() {
		r := recover()
		if r == nil && !p.busy() {
			return
		}
		if r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("sketch generation panicked")
		}
		out, err = nil, p.fail(log, domain.NewGenerationError(errAborted))
	}()

	refinement := p.refine(ctx, mood, style)
	if refinement.Degraded {
		log.Warn().Str("reason", refinement.Reason).Msg("refinement degraded, using fallback prompt")
	}

	p.setState(domain.StateGenerating)
	result, err := p.generate(ctx, refinement.Prompt, style)
	if err != nil {
		return nil, p.fail(log, err)
	}

	sketch := domain.MoodSketch{
		ID:            p.newID(),
		OriginalMood:  mood,
		RefinedPrompt: refinement.Prompt,
		ImageURL:      result.URL,
		Colors:        domain.NormalizePalette(refinement.Colors),
		Style:         style,
		Timestamp:     p.now().UnixMilli(),
	}
	if err := p.gallery.Append(ctx, sketch); err != nil {
		p.deleteBlob(ctx, result.StorageKey)
		return nil, p.fail(log, err)
	}

	p.mu.Lock()
	p.state = domain.StateSucceeded
	p.lastError = ""
	p.mu.Unlock()

	metrics.GenerationsTotal.WithLabelValues("succeeded").Inc()
	metrics.GallerySize.Set(float64(len(p.gallery.List())))
	log.Info().Str("sketch_id", sketch.ID).Str("provider", refinement.Provider).Msg("sketch generated")
	return &sketch, nil
}

func (p *Pipeline) refine(ctx context.Context, mood, style string) prompt.Refinement {
	stepCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	started := time.Now()
	res := p.refiner.Refine(stepCtx, mood, style)
	metrics.GenerationDuration.WithLabelValues("refine").Observe(time.Since(started).Seconds())
	return res
}

func (p *Pipeline) generate(ctx context.Context, refined, style string) (*image.Result, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	started := time.Now()
	result, err := p.generator.Generate(stepCtx, image.Request{Prompt: refined, Style: style})
	metrics.GenerationDuration.WithLabelValues("generate").Observe(time.Since(started).Seconds())
	if err != nil {
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("image generation timed out after %s: %w", p.timeout, err)
		}
		return nil, domain.NewGenerationError(err)
	}
	if result == nil || result.URL == "" {
		return nil, domain.NewGenerationError(errors.New("image backend returned no image"))
	}
	return result, nil
}

func (p *Pipeline) fail(log infra.Logger, err error) error {
	p.mu.Lock()
	p.state = domain.StateFailed
	p.lastError = UserMessage(err, p.limit)
	p.mu.Unlock()
	metrics.GenerationsTotal.WithLabelValues("failed").Inc()
	log.Error().Err(err).Msg("sketch generation failed")
	return err
}

func (p *Pipeline) setState(s domain.PipelineState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pipeline) busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busyLocked()
}

func (p *Pipeline) busyLocked() bool {
	return p.state == domain.StateRefining || p.state == domain.StateGenerating
}

// Status returns a snapshot of the pipeline and the attempt counter.
func (p *Pipeline) Status() domain.GenerationStatus {
	p.mu.Lock()
	state, lastError := p.state, p.lastError
	p.mu.Unlock()
	count := p.gallery.Count()
	remaining := p.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return domain.GenerationStatus{
		State:     state,
		Loading:   state == domain.StateRefining || state == domain.StateGenerating,
		Error:     lastError,
		Count:     count,
		Limit:     p.limit,
		Remaining: remaining,
	}
}

// Remove deletes one sketch and its stored image. The attempt stays consumed.
func (p *Pipeline) Remove(ctx context.Context, id string) error {
	removed, err := p.gallery.Remove(ctx, id)
	if err != nil {
		return err
	}
	p.deleteBlob(ctx, blobKey(removed))
	metrics.GallerySize.Set(float64(len(p.gallery.List())))
	return nil
}

// Reset wipes the gallery, zeroes the counter and clears the error slot.
func (p *Pipeline) Reset(ctx context.Context) error {
	p.mu.Lock()
	if p.busyLocked() {
		p.mu.Unlock()
		return domain.ErrGenerationInProgress
	}
	p.mu.Unlock()

	removed, err := p.gallery.ResetAll(ctx)
	if err != nil {
		return err
	}
	for _, sk := range removed {
		p.deleteBlob(ctx, blobKey(sk))
	}

	p.mu.Lock()
	p.state = domain.StateIdle
	p.lastError = ""
	p.mu.Unlock()
	metrics.GallerySize.Set(0)
	p.logger.Info().Int("removed", len(removed)).Msg("gallery reset")
	return nil
}

func (p *Pipeline) deleteBlob(ctx context.Context, key string) {
	if p.blobs == nil || key == "" {
		return
	}
	if err := p.blobs.Delete(ctx, key); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("failed to delete image blob")
	}
}

func blobKey(sk domain.MoodSketch) string {
	key, _ := image.StorageKeyFromURL(sk.ImageURL)
	return key
}

// UserMessage is the text stored in the error slot for err.
func UserMessage(err error, limit int) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrEmptyMood):
		return "Please express your mood first."
	case errors.Is(err, domain.ErrQuotaExceeded):
		return fmt.Sprintf("You've reached your limit of %d mood sketches.", limit)
	case errors.Is(err, domain.ErrGenerationInProgress):
		return "A sketch is already being generated."
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "Failed to generate. Try again."
}
