package infra

import (
	"errors"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	query := "--sql 0b6f7c1e-2a4d-4f5e-9c8b-7a6d5e4f3c2b\nselect 1;\n"
	marker, body, err := ExtractMarker(query)
	if err != nil {
		t.Fatalf("ExtractMarker error: %v", err)
	}
	if marker != "0b6f7c1e-2a4d-4f5e-9c8b-7a6d5e4f3c2b" {
		t.Fatalf("marker = %q", marker)
	}
	if body != "select 1;" {
		t.Fatalf("body = %q", body)
	}
}

func TestExtractMarkerRejectsUnmarkedQuery(t *testing.T) {
	for _, q := range []string{"", "select 1", "--sql not-a-uuid\nselect 1"} {
		if _, _, err := ExtractMarker(q); !errors.Is(err, ErrMissingMarker) {
			t.Fatalf("ExtractMarker(%q) error = %v, want ErrMissingMarker", q, err)
		}
	}
}
