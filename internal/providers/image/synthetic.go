package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/google/uuid"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

const syntheticSize = 256

// SyntheticGenerator renders a deterministic gradient from the prompt hash.
// It stands in for a remote backend in development and tests.
type SyntheticGenerator struct {
	blobs BlobWriter
	size  int
}

func NewSyntheticGenerator(blobs BlobWriter) *SyntheticGenerator {
	return &SyntheticGenerator{blobs: blobs, size: syntheticSize}
}

func (s *SyntheticGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewGenerationError(err)
	}
	data, err := renderGradient(req, s.size)
	if err != nil {
		return nil, domain.NewGenerationError(err)
	}
	if s.blobs == nil {
		return nil, domain.NewGenerationError(fmt.Errorf("synthetic generator has no blob store"))
	}
	key := fmt.Sprintf("sketches/%s.png", uuid.NewString())
	stored, err := s.blobs.Write(ctx, key, data)
	if err != nil {
		return nil, domain.NewGenerationError(fmt.Errorf("failed to store image: %w", err))
	}
	return &Result{URL: ImageURL(stored), StorageKey: stored, MIME: "image/png", Bytes: len(data)}, nil
}

func renderGradient(req Request, size int) ([]byte, error) {
	sum := sha256.Sum256([]byte(strings.TrimSpace(req.Prompt) + "|" + strings.TrimSpace(req.Style)))
	from := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 0xff}
	to := color.RGBA{R: sum[3], G: sum[4], B: sum[5], A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	span := 2 * (size - 1)
	if span <= 0 {
		span = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t := (x + y) * 255 / span
			img.SetRGBA(x, y, color.RGBA{
				R: lerp(from.R, to.R, t),
				G: lerp(from.G, to.G, t),
				B: lerp(from.B, to.B, t),
				A: 0xff,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lerp(a, b uint8, t int) uint8 {
	return uint8((int(a)*(255-t) + int(b)*t) / 255)
}

var _ Generator = (*SyntheticGenerator)(nil)
