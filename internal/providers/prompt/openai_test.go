package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func chatReply(content string) string {
	raw, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"content": content}}},
	})
	return string(raw)
}

func newTestOpenAIRefiner(fn roundTripFunc, onFallback func(string, error)) *OpenAIRefiner {
	return NewOpenAIRefiner(OpenAIOptions{
		APIKey:     "dummy",
		HTTPClient: &http.Client{Transport: fn},
		OnFallback: onFallback,
	})
}

func TestOpenAIRefinerParsesFencedReply(t *testing.T) {
	var captured openAIChatRequest
	var auth, path string
	refiner := newTestOpenAIRefiner(func(r *http.Request) (*http.Response, error) {
		auth = r.Header.Get("Authorization")
		path = r.URL.String()
		_ = json.NewDecoder(r.Body).Decode(&captured)
		return jsonResponse(http.StatusOK, chatReply("```json\n{\"prompt\":\"a quiet lake\",\"colors\":[\"#a1b2c3\",\"#d4e5f6\",\"#112233\",\"#445566\",\"#778899\"]}\n```")), nil
	}, nil)

	res := refiner.Refine(context.Background(), "Calm", "Abstract")
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %s", res.Reason)
	}
	if res.Prompt != "a quiet lake" {
		t.Fatalf("Prompt = %q", res.Prompt)
	}
	if len(res.Colors) != 5 || res.Colors[0] != "#a1b2c3" {
		t.Fatalf("Colors = %v", res.Colors)
	}
	if res.Provider != openAIProviderName {
		t.Fatalf("Provider = %q", res.Provider)
	}
	if auth != "Bearer dummy" {
		t.Fatalf("Authorization = %q", auth)
	}
	if path != "https://gen.pollinations.ai/v1/chat/completions" {
		t.Fatalf("endpoint = %q", path)
	}
	if captured.Model != "nova-fast" || !captured.JSONMode {
		t.Fatalf("request = %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[1].Content != "Calm" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[0].Content, `"Abstract"`) {
		t.Fatalf("system prompt missing style: %q", captured.Messages[0].Content)
	}
}

func TestOpenAIRefinerFillsMissingFields(t *testing.T) {
	refiner := newTestOpenAIRefiner(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, chatReply(`{"prompt":"","colors":["#123456","#abcdef"]}`)), nil
	}, nil)

	res := refiner.Refine(context.Background(), "Lonely", "Charcoal")
	if res.Degraded {
		t.Fatalf("under-supplied reply must not degrade")
	}
	if res.Prompt != "Lonely in Charcoal style" {
		t.Fatalf("Prompt = %q", res.Prompt)
	}
	want := []string{"#123456", "#abcdef", "#444444", "#222222", "#000000"}
	for i := range want {
		if res.Colors[i] != want[i] {
			t.Fatalf("Colors = %v, want %v", res.Colors, want)
		}
	}
}

func TestOpenAIRefinerFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		rt     roundTripFunc
		reason string
	}{
		{
			name:   "transport",
			rt:     func(r *http.Request) (*http.Response, error) { return nil, errors.New("boom") },
			reason: "http_request",
		},
		{
			name: "status",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusServiceUnavailable, "down"), nil
			},
			reason: "http_503",
		},
		{
			name:   "no_choices",
			rt:     func(r *http.Request) (*http.Response, error) { return jsonResponse(http.StatusOK, `{"choices":[]}`), nil },
			reason: "empty_choices",
		},
		{
			name:   "empty_content",
			rt:     func(r *http.Request) (*http.Response, error) { return jsonResponse(http.StatusOK, chatReply("  ")), nil },
			reason: "empty_response",
		},
		{
			name:   "malformed",
			rt:     func(r *http.Request) (*http.Response, error) { return jsonResponse(http.StatusOK, chatReply("not json at all")), nil },
			reason: "parse_payload",
		},
		{
			name:   "bad_envelope",
			rt:     func(r *http.Request) (*http.Response, error) { return jsonResponse(http.StatusOK, "<html>"), nil },
			reason: "decode_response",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var captured string
			refiner := newTestOpenAIRefiner(tc.rt, func(reason string, err error) { captured = reason })
			res := refiner.Refine(context.Background(), "Calm", "Abstract")
			if !res.Degraded || res.Reason != tc.reason {
				t.Fatalf("result = %+v, want degraded with %q", res, tc.reason)
			}
			if captured != tc.reason {
				t.Fatalf("OnFallback reason = %q, want %q", captured, tc.reason)
			}
			if res.Prompt != "Calm artistic masterpiece, Abstract style, 8k resolution, cinematic lighting" {
				t.Fatalf("Prompt = %q", res.Prompt)
			}
			if strings.Join(res.Colors, " ") != "#333333 #555555 #777777 #999999 #bbbbbb" {
				t.Fatalf("Colors = %v", res.Colors)
			}
			if res.Provider != staticProviderName {
				t.Fatalf("Provider = %q", res.Provider)
			}
		})
	}
}

func TestOpenAIRefinerWithoutKeyOmitsAuthorization(t *testing.T) {
	var auth string
	refiner := NewOpenAIRefiner(OpenAIOptions{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			auth = r.Header.Get("Authorization")
			return jsonResponse(http.StatusOK, chatReply(`{"prompt":"p","colors":[]}`)), nil
		})},
	})
	res := refiner.Refine(context.Background(), "Calm", "Abstract")
	if res.Degraded {
		t.Fatalf("unexpected degraded result")
	}
	if auth != "" {
		t.Fatalf("Authorization = %q, want empty", auth)
	}
}

func TestOpenAIRefinerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	refiner := newTestOpenAIRefiner(func(r *http.Request) (*http.Response, error) {
		return nil, r.Context().Err()
	}, nil)
	res := refiner.Refine(ctx, "Calm", "Abstract")
	if !res.Degraded || res.Reason != "context" {
		t.Fatalf("result = %+v, want context degradation", res)
	}
}

func TestExtractJSONFragment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "Sure! {\"a\":1} hope it helps", want: `{"a":1}`},
		{in: "   ", want: ""},
		{in: "```\n{\"b\":2}```", want: `{"b":2}`},
	}
	for _, tc := range cases {
		if got := extractJSONFragment(tc.in); got != tc.want {
			t.Fatalf("extractJSONFragment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
