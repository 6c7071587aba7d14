package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

func TestLocalize(t *testing.T) {
	tests := []struct {
		locale string
		key    string
		args   []any
		want   string
	}{
		{"en", msgQuotaExceeded, []any{3}, "You've reached your limit of 3 mood sketches."},
		{"id", msgQuotaExceeded, []any{3}, "Kamu telah mencapai batas 3 sketsa suasana hati."},
		{"id-ID", msgShareFailed, nil, "Gagal membagikan. Silakan unduh gambarnya."},
		{"fr", msgEmptyMood, nil, "Please express your mood first."},
		{"", msgNotFound, nil, "Sketch not found."},
	}
	for _, tc := range tests {
		if got := localize(tc.locale, tc.key, tc.args...); got != tc.want {
			t.Fatalf("localize(%q, %q) = %q, want %q", tc.locale, tc.key, got, tc.want)
		}
	}
}

func TestLoadImageDataURI(t *testing.T) {
	app := &App{}
	raw := []byte("\x89PNG\r\n\x1a\nrest")
	sk := domain.MoodSketch{ImageURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), Timestamp: 42}
	img, err := app.loadImage(context.Background(), sk)
	if err != nil {
		t.Fatalf("loadImage: %v", err)
	}
	if img.MIME != "image/png" || string(img.Data) != string(raw) {
		t.Fatalf("image = %+v", img)
	}
	if name := downloadName(sk, img.MIME); name != "sketch-my-mood-42.png" {
		t.Fatalf("download name = %q", name)
	}
}

func TestLoadImageUnavailable(t *testing.T) {
	app := &App{}
	for _, ref := range []string{"", "blob:http://localhost/abc", "data:image/png,notbase64", "/v1/images/sketches/a.png"} {
		if _, err := app.loadImage(context.Background(), domain.MoodSketch{ImageURL: ref}); !errors.Is(err, errImageUnavailable) {
			t.Fatalf("loadImage(%q) err = %v", ref, err)
		}
	}
}

func TestLoadImageRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	}))
	defer srv.Close()

	app := &App{HTTPClient: srv.Client()}
	img, err := app.loadImage(context.Background(), domain.MoodSketch{ImageURL: srv.URL + "/sketch.jpg", Timestamp: 7})
	if err != nil {
		t.Fatalf("loadImage: %v", err)
	}
	if img.MIME != "image/jpeg" || len(img.Data) != 4 {
		t.Fatalf("image = %+v", img)
	}
	if name := downloadName(domain.MoodSketch{Timestamp: 7}, img.MIME); name != "sketch-my-mood-7.jpg" {
		t.Fatalf("download name = %q", name)
	}
	if _, err := app.loadImage(context.Background(), domain.MoodSketch{ImageURL: srv.URL + "/missing.jpg"}); !errors.Is(err, errImageUnavailable) {
		t.Fatalf("missing remote err = %v", err)
	}
}

func TestLoadImageRemoteOverLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, 9))
	}))
	defer srv.Close()

	app := &App{HTTPClient: srv.Client(), MaxImageBytes: 8}
	_, err := app.loadImage(context.Background(), domain.MoodSketch{ImageURL: srv.URL + "/big.png"})
	if !errors.Is(err, errImageUnavailable) {
		t.Fatalf("oversized remote err = %v, want errImageUnavailable", err)
	}

	app.MaxImageBytes = 9
	img, err := app.loadImage(context.Background(), domain.MoodSketch{ImageURL: srv.URL + "/big.png"})
	if err != nil || len(img.Data) != 9 {
		t.Fatalf("body at limit = %d bytes, err %v", len(img.Data), err)
	}
}
