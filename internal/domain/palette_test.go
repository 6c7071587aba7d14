package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalizePalette(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil", input: nil, want: GreyscalePalette},
		{name: "exact", input: []string{"#a1b2c3", "#d4e5f6", "#112233", "#445566", "#778899"}, want: []string{"#a1b2c3", "#d4e5f6", "#112233", "#445566", "#778899"}},
		{name: "short", input: []string{"#abc", "#123456"}, want: []string{"#abc", "#123456", "#444444", "#222222", "#000000"}},
		{name: "long", input: []string{"#111111", "#222222", "#333333", "#444444", "#555555", "#666666"}, want: []string{"#111111", "#222222", "#333333", "#444444", "#555555"}},
		{name: "invalid dropped", input: []string{"red", " #010203 ", "#12", ""}, want: []string{"#010203", "#888888", "#444444", "#222222", "#000000"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePalette(tc.input)
			if len(got) != PaletteSize {
				t.Fatalf("len = %d, want %d", len(got), PaletteSize)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("colors[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestResolveStyleName(t *testing.T) {
	if got := ResolveStyleName(DefaultStyles, "sketch"); got != "Charcoal" {
		t.Fatalf("sketch = %q, want Charcoal", got)
	}
	if got := ResolveStyleName(DefaultStyles, "SURREAL"); got != "Surrealism" {
		t.Fatalf("SURREAL = %q, want Surrealism", got)
	}
	if got := ResolveStyleName(DefaultStyles, "unknown"); got != DefaultStyleName {
		t.Fatalf("unknown = %q, want %q", got, DefaultStyleName)
	}
}

func TestGenerationErrorKeepsMessage(t *testing.T) {
	err := NewGenerationError(errors.New("503 Service Unavailable"))
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatal("expected errors.Is to match ErrGenerationFailed")
	}
	if err.Error() != "503 Service Unavailable" {
		t.Fatalf("message = %q", err.Error())
	}
	wrapped := fmt.Errorf("%w: already tagged", ErrGenerationFailed)
	if NewGenerationError(wrapped) != wrapped {
		t.Fatal("expected tagged errors to pass through unchanged")
	}
	if NewGenerationError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
