package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
)

type modelRefinePayload struct {
	Prompt string   `json:"prompt"`
	Colors []string `json:"colors"`
}

func buildSystemPrompt(mood, style string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are an art director. Analyze the mood: %q.\n", mood)
	fmt.Fprintf(sb, "1. Create a detailed, creative artistic image prompt for a %q style.\n", style)
	sb.WriteString("2. Generate a palette of 5 hex color codes representing this mood.\n")
	sb.WriteString("3. IMPORTANT: Return ONLY raw JSON without markdown formatting.\n")
	sb.WriteString(`Format: {"prompt": "your detailed prompt", "colors": ["#hex1", "#hex2", "#hex3", "#hex4", "#hex5"]}`)
	return sb.String()
}

// finalize fills the gaps a parsed reply may have left. These are not
// degradations: the backend answered, it just under-supplied.
func finalize(parsed modelRefinePayload, mood, style, provider string) Refinement {
	return Refinement{
		Prompt:   coalesce(parsed.Prompt, fmt.Sprintf("%s in %s style", mood, style)),
		Colors:   domain.NormalizePalette(parsed.Colors),
		Provider: provider,
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
