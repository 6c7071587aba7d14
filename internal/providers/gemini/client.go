// Package gemini shares the Gemini API client between the text and image
// backends.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned by Models when no key is configured.
var ErrMissingAPIKey = errors.New("gemini api key is required")

type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client builds the underlying genai.Client on first use, so a misconfigured
// key surfaces per request instead of at startup. A failed build is retried
// on the next call.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	build      func(context.Context, *genai.ClientConfig) (*genai.Client, error)

	mu     sync.Mutex
	client *genai.Client
}

func NewClient(opts Options) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    strings.TrimSpace(opts.BaseURL),
		httpClient: opts.HTTPClient,
		build:      genai.NewClient,
	}
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c != nil && c.apiKey != ""
}

// Models returns the content generation service.
func (c *Client) Models(ctx context.Context) (*genai.Models, error) {
	if !c.HasKey() {
		return nil, ErrMissingAPIKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client.Models, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	// The client outlives the request that builds it.
	client, err := c.build(context.WithoutCancel(ctx), cfg)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client.Models, nil
}

// FirstCandidateParts returns the parts of the first candidate, or nil.
func FirstCandidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
