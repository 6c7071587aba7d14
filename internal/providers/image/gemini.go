package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/gemini"
)

const defaultGeminiImageModel = "gemini-2.5-flash-image"

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiGenerator asks a Gemini image model for a square image and returns
// it inline as a data: URI.
type GeminiGenerator struct {
	client *gemini.Client
	model  string
}

func NewGeminiGenerator(opts GeminiOptions) *GeminiGenerator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiImageModel
	}
	return &GeminiGenerator{
		client: gemini.NewClient(gemini.Options{
			APIKey:     opts.APIKey,
			BaseURL:    opts.BaseURL,
			HTTPClient: opts.HTTPClient,
		}),
		model: model,
	}
}

func buildGeminiPrompt(req Request) string {
	return fmt.Sprintf("Artistic Masterpiece. Style: %s. Subject: %s. High resolution, 4k, cinematic, emotive lighting.", req.Style, req.Prompt)
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	models, err := g.client.Models(ctx)
	if err != nil {
		return nil, domain.NewGenerationError(err)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(buildGeminiPrompt(req))}, genai.RoleUser),
	}
	resp, err := models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: "1:1"},
	})
	if err != nil {
		return nil, domain.NewGenerationError(err)
	}
	for _, part := range gemini.FirstCandidateParts(resp) {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := normalizeFormat(part.InlineData.MIMEType)
		return &Result{
			URL:   fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(part.InlineData.Data)),
			MIME:  mime,
			Bytes: len(part.InlineData.Data),
		}, nil
	}
	return nil, domain.NewGenerationError(errors.New("no image data found in response"))
}

var _ Generator = (*GeminiGenerator)(nil)
