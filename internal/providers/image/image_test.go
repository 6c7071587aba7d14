package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

type memoryBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func (m *memoryBlobs) Write(ctx context.Context, key string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = append([]byte(nil), data...)
	return key, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestPollinationsBuildURL(t *testing.T) {
	gen, err := NewPollinationsGenerator(PollinationsOptions{APIKey: "k", Blobs: &memoryBlobs{}})
	if err != nil {
		t.Fatalf("NewPollinationsGenerator error: %v", err)
	}
	raw := gen.BuildURL(Request{Prompt: "a quiet lake", Style: "Abstract"}, 42)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "gen.pollinations.ai" {
		t.Fatalf("host = %q", u.Host)
	}
	if u.Path != "/image/a quiet lake, Abstract style, high quality, 4k" {
		t.Fatalf("path = %q", u.Path)
	}
	q := u.Query()
	for key, want := range map[string]string{"width": "1024", "height": "1024", "nologo": "true", "seed": "42", "model": "flux", "key": "k"} {
		if q.Get(key) != want {
			t.Fatalf("query %s = %q, want %q", key, q.Get(key), want)
		}
	}

	anon, _ := NewPollinationsGenerator(PollinationsOptions{Blobs: &memoryBlobs{}})
	if strings.Contains(anon.BuildURL(Request{Prompt: "p", Style: "s"}, 1), "key=") {
		t.Fatalf("anonymous url must not carry a key")
	}
}

func TestPollinationsGenerateStoresBlob(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	blobs := &memoryBlobs{}
	gen, _ := NewPollinationsGenerator(PollinationsOptions{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Blobs:      blobs,
		Seed:       func() int { return 7 },
	})
	res, err := gen.Generate(context.Background(), Request{Prompt: "neon rain", Style: "Cyberpunk"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/image/neon rain") {
		t.Fatalf("path = %q", gotPath)
	}
	if res.MIME != "image/jpeg" || res.Bytes != len("jpeg-bytes") {
		t.Fatalf("result = %+v", res)
	}
	if !strings.HasPrefix(res.StorageKey, "sketches/") || !strings.HasSuffix(res.StorageKey, ".jpg") {
		t.Fatalf("storage key = %q", res.StorageKey)
	}
	if res.URL != "/v1/images/"+res.StorageKey {
		t.Fatalf("url = %q", res.URL)
	}
	if string(blobs.data[res.StorageKey]) != "jpeg-bytes" {
		t.Fatalf("blob not stored")
	}
	key, ok := StorageKeyFromURL(res.URL)
	if !ok || key != res.StorageKey {
		t.Fatalf("StorageKeyFromURL = %q, %v", key, ok)
	}
}

func TestPollinationsGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gen, _ := NewPollinationsGenerator(PollinationsOptions{BaseURL: srv.URL, HTTPClient: srv.Client(), Blobs: &memoryBlobs{}})
	_, err := gen.Generate(context.Background(), Request{Prompt: "p", Style: "s"})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	if !strings.Contains(err.Error(), "503 Service Unavailable") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestPollinationsGenerateEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	gen, _ := NewPollinationsGenerator(PollinationsOptions{BaseURL: srv.URL, HTTPClient: srv.Client(), Blobs: &memoryBlobs{}})
	if _, err := gen.Generate(context.Background(), Request{Prompt: "p"}); !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
}

func TestPollinationsGenerateRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(append(append([]byte(nil), pngHeader...), "extra"...))
	}))
	defer srv.Close()

	blobs := &memoryBlobs{}
	gen, _ := NewPollinationsGenerator(PollinationsOptions{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Blobs:      blobs,
		MaxBytes:   int64(len(pngHeader)),
	})
	_, err := gen.Generate(context.Background(), Request{Prompt: "p", Style: "s"})
	if !errors.Is(err, domain.ErrGenerationFailed) || !errors.Is(err, ErrTooLarge) {
		t.Fatalf("error = %v, want ErrGenerationFailed wrapping ErrTooLarge", err)
	}
	if len(blobs.data) != 0 {
		t.Fatalf("truncated image was stored")
	}
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("abcd"), 4)
	if err != nil || string(data) != "abcd" {
		t.Fatalf("ReadLimited at limit = %q, %v", data, err)
	}
	if _, err := ReadLimited(strings.NewReader("abcde"), 4); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("ReadLimited over limit err = %v", err)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"image/png":                 "png",
		"image/jpeg":                "jpg",
		"image/jpg; charset=binary": "jpg",
		"IMAGE/WEBP":                "webp",
		"image/gif":                 "gif",
		"application/octet-stream":  "png",
	}
	for mime, want := range tests {
		if got := Extension(mime); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestNewPollinationsGeneratorRequiresBlobs(t *testing.T) {
	if _, err := NewPollinationsGenerator(PollinationsOptions{}); err == nil {
		t.Fatalf("expected error without blob store")
	}
}

func TestGeminiGeneratorReturnsDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngHeader)
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		body = buf.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":"` + encoded + `"}}]}}]}`))
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(GeminiOptions{APIKey: "dummy", BaseURL: srv.URL, HTTPClient: srv.Client()})
	res, err := gen.Generate(context.Background(), Request{Prompt: "a quiet lake", Style: "Watercolor"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if res.URL != "data:image/png;base64,"+encoded {
		t.Fatalf("url = %q", res.URL)
	}
	if !strings.Contains(body, "Style: Watercolor. Subject: a quiet lake.") {
		t.Fatalf("request body missing prompt: %s", body)
	}
	if !strings.Contains(body, "1:1") {
		t.Fatalf("request body missing aspect ratio: %s", body)
	}
}

func TestGeminiGeneratorNoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"sorry"}]}}]}`))
	}))
	defer srv.Close()

	gen := NewGeminiGenerator(GeminiOptions{APIKey: "dummy", BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := gen.Generate(context.Background(), Request{Prompt: "p", Style: "s"})
	if !errors.Is(err, domain.ErrGenerationFailed) || err.Error() != "no image data found in response" {
		t.Fatalf("error = %v", err)
	}
}

func TestGeminiGeneratorMissingKey(t *testing.T) {
	_, err := NewGeminiGenerator(GeminiOptions{}).Generate(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("error = %v", err)
	}
}

func TestSyntheticGeneratorIsDeterministic(t *testing.T) {
	blobs := &memoryBlobs{}
	gen := NewSyntheticGenerator(blobs)
	a, err := gen.Generate(context.Background(), Request{Prompt: "calm", Style: "Abstract"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	b, _ := gen.Generate(context.Background(), Request{Prompt: "calm", Style: "Abstract"})
	if a.StorageKey == b.StorageKey {
		t.Fatalf("each generation needs its own key")
	}
	if !bytes.Equal(blobs.data[a.StorageKey], blobs.data[b.StorageKey]) {
		t.Fatalf("same prompt rendered different images")
	}
	img, err := png.Decode(bytes.NewReader(blobs.data[a.StorageKey]))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != syntheticSize {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
}

func TestSyntheticGeneratorStoreFailure(t *testing.T) {
	gen := NewSyntheticGenerator(&memoryBlobs{err: errors.New("disk full")})
	if _, err := gen.Generate(context.Background(), Request{Prompt: "p"}); !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("error = %v", err)
	}
}
