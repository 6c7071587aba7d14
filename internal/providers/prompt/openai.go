package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions configures an OpenAI-compatible chat completion refiner.
// Pollinations serves this API at https://gen.pollinations.ai/v1.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Refiner
	OnFallback func(reason string, err error)
}

type OpenAIRefiner struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	fallback   Refiner
	onFallback func(reason string, err error)
}

const (
	openAIDefaultTimeout = 30 * time.Second
	defaultOpenAIBaseURL = "https://gen.pollinations.ai/v1"
	defaultOpenAIModel   = "nova-fast"
)

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	JSONMode       bool            `json:"jsonMode,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIRefiner builds the refiner. An empty API key is allowed: the
// request is then sent without an Authorization header.
func NewOpenAIRefiner(opts OpenAIOptions) *OpenAIRefiner {
	baseURL := strings.TrimRight(coalesce(opts.BaseURL, defaultOpenAIBaseURL), "/")
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIRefiner{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      coalesce(opts.Model, defaultOpenAIModel),
		baseURL:    baseURL,
		client:     client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}
}

func (o *OpenAIRefiner) Refine(ctx context.Context, mood, style string) Refinement {
	payload := openAIChatRequest{
		Model:          o.model,
		JSONMode:       true,
		ResponseFormat: &openAIFormat{Type: "json_object"},
		Messages: []openAIMessage{
			{Role: "system", Content: buildSystemPrompt(mood, style)},
			{Role: "user", Content: mood},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return o.useFallback(ctx, mood, style, "encode_request", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return o.useFallback(ctx, mood, style, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return o.useFallback(ctx, mood, style, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return o.useFallback(ctx, mood, style, fmt.Sprintf("http_%d", resp.StatusCode),
			fmt.Errorf("text generation failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return o.useFallback(ctx, mood, style, "decode_response", err)
	}
	if len(out.Choices) == 0 {
		return o.useFallback(ctx, mood, style, "empty_choices", errors.New("no choices"))
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return o.useFallback(ctx, mood, style, "empty_response", errors.New("empty response"))
	}
	parsed, err := parseModelPayload[modelRefinePayload](text)
	if err != nil {
		return o.useFallback(ctx, mood, style, "parse_payload", err)
	}
	return finalize(parsed, mood, style, openAIProviderName)
}

func (o *OpenAIRefiner) useFallback(ctx context.Context, mood, style, reason string, err error) Refinement {
	return degrade(ctx, o.fallback, o.onFallback, mood, style, reason, err)
}

var _ Refiner = (*OpenAIRefiner)(nil)
