// Package prompt turns a free-text mood into a detailed image prompt and a
// five color palette.
package prompt

import (
	"context"
	"fmt"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

// Refinement is the refiner output. Degraded marks a result produced by the
// static fallback after the backend failed; it is never surfaced as an error.
type Refinement struct {
	Prompt   string   `json:"prompt"`
	Colors   []string `json:"colors"`
	Degraded bool     `json:"-"`
	Reason   string   `json:"-"`
	Provider string   `json:"-"`
}

// Refiner never fails: backend problems produce a degraded Refinement.
type Refiner interface {
	Refine(ctx context.Context, mood, style string) Refinement
}

// StaticRefiner returns the deterministic full-failure result.
type StaticRefiner struct{}

func NewStaticRefiner() *StaticRefiner {
	return &StaticRefiner{}
}

func (s *StaticRefiner) Refine(ctx context.Context, mood, style string) Refinement {
	return Refinement{
		Prompt:   fmt.Sprintf("%s artistic masterpiece, %s style, 8k resolution, cinematic lighting", mood, style),
		Colors:   domain.CopyPalette(domain.FallbackPalette),
		Provider: staticProviderName,
	}
}

// degrade runs fallback (or the static refiner) and marks the result.
func degrade(ctx context.Context, fallback Refiner, onFallback func(string, error), mood, style, reason string, cause error) Refinement {
	if ctx.Err() != nil && reason != "missing_api_key" {
		reason = "context"
		if cause == nil {
			cause = ctx.Err()
		}
	}
	if onFallback != nil {
		onFallback(reason, cause)
	}
	if fallback == nil {
		fallback = NewStaticRefiner()
	}
	res := fallback.Refine(ctx, mood, style)
	res.Colors = domain.NormalizePalette(res.Colors)
	if res.Provider == "" {
		res.Provider = staticProviderName
	}
	res.Degraded = true
	res.Reason = reason
	return res
}

var _ Refiner = (*StaticRefiner)(nil)
