package image

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

const (
	defaultPollinationsBaseURL = "https://gen.pollinations.ai"
	defaultPollinationsModel   = "flux"
	pollinationsDefaultTimeout = 60 * time.Second
	seedRange                  = 1000000
)

type PollinationsOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Width      int
	Height     int
	HTTPClient *http.Client
	Blobs      BlobWriter
	// MaxBytes caps the response body. Defaults to MaxImageBytes.
	MaxBytes int64
	// Seed returns the per-request seed. Defaults to a random value in
	// [0, 1000000).
	Seed func() int
}

// PollinationsGenerator fetches an image from the Pollinations image endpoint
// and stores the bytes in the blob store.
type PollinationsGenerator struct {
	apiKey  string
	baseURL string
	model   string
	width   int
	height  int
	client  *http.Client
	blobs   BlobWriter
	seed    func() int
	maxSize int64
}

func NewPollinationsGenerator(opts PollinationsOptions) (*PollinationsGenerator, error) {
	if opts.Blobs == nil {
		return nil, errors.New("pollinations generator requires a blob store")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: pollinationsDefaultTimeout}
	}
	seed := opts.Seed
	if seed == nil {
		seed = func() int { return rand.IntN(seedRange) }
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultPollinationsBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultPollinationsModel
	}
	return &PollinationsGenerator{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		model:   model,
		width:   width,
		height:  height,
		client:  client,
		blobs:   opts.Blobs,
		seed:    seed,
		maxSize: opts.MaxBytes,
	}, nil
}

// BuildURL returns the request URL for req with the given seed.
func (p *PollinationsGenerator) BuildURL(req Request, seed int) string {
	finalPrompt := fmt.Sprintf("%s, %s style, high quality, 4k", req.Prompt, req.Style)
	q := url.Values{}
	q.Set("width", strconv.Itoa(p.width))
	q.Set("height", strconv.Itoa(p.height))
	q.Set("nologo", "true")
	q.Set("seed", strconv.Itoa(seed))
	q.Set("model", p.model)
	if p.apiKey != "" {
		q.Set("key", p.apiKey)
	}
	return fmt.Sprintf("%s/image/%s?%s", p.baseURL, url.PathEscape(finalPrompt), q.Encode())
}

func (p *PollinationsGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	endpoint := p.BuildURL(req, p.seed())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewGenerationError(err)
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, domain.NewGenerationError(fmt.Errorf("failed to generate image: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, domain.NewGenerationError(fmt.Errorf("failed to generate image: %s", resp.Status))
	}
	data, err := ReadLimited(resp.Body, p.maxSize)
	if err != nil {
		return nil, domain.NewGenerationError(fmt.Errorf("failed to read image: %w", err))
	}
	if len(data) == 0 {
		return nil, domain.NewGenerationError(errors.New("failed to generate image: empty response"))
	}
	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(mime), "image/") {
		mime = http.DetectContentType(data)
	}
	mime = normalizeFormat(mime)
	key := fmt.Sprintf("sketches/%s.%s", uuid.NewString(), Extension(mime))
	stored, err := p.blobs.Write(ctx, key, data)
	if err != nil {
		return nil, domain.NewGenerationError(fmt.Errorf("failed to store image: %w", err))
	}
	return &Result{
		URL:        ImageURL(stored),
		StorageKey: stored,
		MIME:       mime,
		Bytes:      len(data),
	}, nil
}

var _ Generator = (*PollinationsGenerator)(nil)
