package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

func TestModelsRequiresKey(t *testing.T) {
	c := NewClient(Options{APIKey: "   "})
	if c.HasKey() {
		t.Fatalf("blank key reported as configured")
	}
	if _, err := c.Models(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v", err)
	}
	var nilClient *Client
	if nilClient.HasKey() {
		t.Fatalf("nil client reported a key")
	}
}

func TestModelsBuildsClientOnce(t *testing.T) {
	c := NewClient(Options{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	first, err := c.Models(context.Background())
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	second, err := c.Models(context.Background())
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if first != second {
		t.Fatalf("client rebuilt between calls")
	}
}

func TestModelsRetriesFailedBuild(t *testing.T) {
	c := NewClient(Options{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	calls := 0
	c.build = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		calls++
		if ctx.Err() != nil {
			t.Fatalf("client built with a done context: %v", ctx.Err())
		}
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return genai.NewClient(ctx, cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Models(ctx); err == nil {
		t.Fatalf("expected first build error")
	}
	if _, err := c.Models(ctx); err != nil {
		t.Fatalf("second Models: %v", err)
	}
	if _, err := c.Models(context.Background()); err != nil || calls != 2 {
		t.Fatalf("third Models err %v, builds = %d, want 2", err, calls)
	}
}

func TestFirstCandidateParts(t *testing.T) {
	if parts := FirstCandidateParts(nil); parts != nil {
		t.Fatalf("parts = %v", parts)
	}
	if parts := FirstCandidateParts(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}); parts != nil {
		t.Fatalf("parts = %v", parts)
	}
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: genai.NewContentFromText("hi", genai.RoleModel),
	}}}
	if parts := FirstCandidateParts(resp); len(parts) != 1 || parts[0].Text != "hi" {
		t.Fatalf("parts = %v", parts)
	}
}
