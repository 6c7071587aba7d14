package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/gemini"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Refiner
	OnFallback func(reason string, err error)
}

// GeminiRefiner asks Gemini for a schema-constrained JSON reply.
type GeminiRefiner struct {
	client     *gemini.Client
	model      string
	fallback   Refiner
	onFallback func(reason string, err error)
}

const defaultGeminiTextModel = "gemini-3-flash-preview"

var refineSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"prompt": {
			Type:        genai.TypeString,
			Description: "The highly detailed artistic image prompt.",
		},
		"colors": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "An array of 5 hex color strings.",
		},
	},
	Required: []string{"prompt", "colors"},
}

func NewGeminiRefiner(opts GeminiOptions) *GeminiRefiner {
	return &GeminiRefiner{
		client: gemini.NewClient(gemini.Options{
			APIKey:     opts.APIKey,
			BaseURL:    opts.BaseURL,
			HTTPClient: opts.HTTPClient,
		}),
		model:      coalesce(opts.Model, defaultGeminiTextModel),
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}
}

func (g *GeminiRefiner) Refine(ctx context.Context, mood, style string) Refinement {
	if !g.client.HasKey() {
		return g.useFallback(ctx, mood, style, "missing_api_key", gemini.ErrMissingAPIKey)
	}
	models, err := g.client.Models(ctx)
	if err != nil {
		return g.useFallback(ctx, mood, style, "client_init", err)
	}
	contents := fmt.Sprintf("Analyze this mood: %q.\nCreate a detailed artistic prompt for a %s style image.\nAlso, provide a palette of 5 hex color codes that represent this emotional state.\n\nReturn the response in JSON format.", mood, style)
	resp, err := models.GenerateContent(ctx, g.model, genai.Text(contents), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   refineSchema,
	})
	if err != nil {
		return g.useFallback(ctx, mood, style, "http_request", err)
	}
	if len(gemini.FirstCandidateParts(resp)) == 0 {
		return g.useFallback(ctx, mood, style, "empty_choices", errors.New("no candidates"))
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return g.useFallback(ctx, mood, style, "empty_response", errors.New("empty response"))
	}
	parsed, err := parseModelPayload[modelRefinePayload](text)
	if err != nil {
		return g.useFallback(ctx, mood, style, "parse_payload", err)
	}
	return finalize(parsed, mood, style, geminiProviderName)
}

func (g *GeminiRefiner) useFallback(ctx context.Context, mood, style, reason string, err error) Refinement {
	return degrade(ctx, g.fallback, g.onFallback, mood, style, reason, err)
}

var _ Refiner = (*GeminiRefiner)(nil)
