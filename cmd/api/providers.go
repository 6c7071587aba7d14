package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra/credentials"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/metrics"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/image"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/prompt"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/share"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/storage"
)

type apiKeys struct {
	text   string
	image  string
	gemini string
}

// resolveKeys prefers the environment and falls back to keys stored with
// moodctl set-key.
func resolveKeys(ctx context.Context, cfg *infra.Config, creds *credentials.Store) (apiKeys, error) {
	var keys apiKeys
	var err error
	if keys.text, err = creds.Resolve(ctx, credentials.ProviderPollinations, cfg.TextAPIKey); err != nil {
		return keys, fmt.Errorf("resolve text key: %w", err)
	}
	if keys.image, err = creds.Resolve(ctx, credentials.ProviderPollinations, cfg.ImageAPIKey); err != nil {
		return keys, fmt.Errorf("resolve image key: %w", err)
	}
	if keys.gemini, err = creds.Resolve(ctx, credentials.ProviderGemini, cfg.GeminiAPIKey); err != nil {
		return keys, fmt.Errorf("resolve gemini key: %w", err)
	}
	return keys, nil
}

func newRefiner(cfg *infra.Config, keys apiKeys, client *http.Client, logger infra.Logger) prompt.Refiner {
	static := prompt.NewStaticRefiner()
	onFallback := func(provider string) func(string, error) {
		return func(reason string, err error) {
			metrics.RefinerFallbacksTotal.WithLabelValues(provider, reason).Inc()
			logger.Warn().Err(err).Str("provider", provider).Str("reason", reason).Msg("prompt refiner fell back")
		}
	}
	switch cfg.RefinerProvider {
	case "static":
		return static
	case "gemini":
		return prompt.NewGeminiRefiner(prompt.GeminiOptions{
			APIKey:     keys.gemini,
			Model:      cfg.GeminiTextModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
			Fallback:   static,
			OnFallback: onFallback("gemini"),
		})
	default:
		return prompt.NewOpenAIRefiner(prompt.OpenAIOptions{
			APIKey:     keys.text,
			Model:      cfg.TextModel,
			BaseURL:    cfg.TextBaseURL,
			HTTPClient: client,
			Fallback:   static,
			OnFallback: onFallback("openai"),
		})
	}
}

func newGenerator(cfg *infra.Config, keys apiKeys, client *http.Client, blobs *storage.FileStore) (image.Generator, error) {
	switch cfg.ImageProvider {
	case "synthetic":
		return image.NewSyntheticGenerator(blobs), nil
	case "gemini":
		return image.NewGeminiGenerator(image.GeminiOptions{
			APIKey:     keys.gemini,
			Model:      cfg.GeminiImageModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
		}), nil
	case "pollinations", "":
		return image.NewPollinationsGenerator(image.PollinationsOptions{
			APIKey:     keys.image,
			BaseURL:    cfg.ImageBaseURL,
			Model:      cfg.ImageModel,
			Width:      cfg.ImageWidth,
			Height:     cfg.ImageHeight,
			HTTPClient: client,
			Blobs:      blobs,
		})
	default:
		return nil, fmt.Errorf("unsupported IMAGE_PROVIDER %q", cfg.ImageProvider)
	}
}

// newSharer returns nil when no share destination is configured; the share
// endpoint then answers share_unavailable.
func newSharer(cfg *infra.Config, client *http.Client) (share.Sharer, error) {
	switch {
	case cfg.ShareWebhookURL != "":
		return share.NewWebhookSharer(cfg.ShareWebhookURL, client), nil
	case cfg.TelegramBotToken != "":
		return share.NewTelegramSharer(share.TelegramOptions{
			Token:      cfg.TelegramBotToken,
			ChatID:     cfg.TelegramChatID,
			HTTPClient: client,
		})
	default:
		return nil, nil
	}
}
