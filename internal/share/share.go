// Package share hands a generated sketch to an external destination.
package share

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

// Payload is what gets shared: the image file and a title.
type Payload struct {
	Title    string
	Filename string
	MIME     string
	Data     []byte
}

// Sharer delivers a payload. Every failure matches domain.ErrShareUnavailable.
type Sharer interface {
	Share(ctx context.Context, p Payload) error
}

// WebhookSharer posts the payload as a multipart form with fields "title"
// and "file".
type WebhookSharer struct {
	url    string
	client *http.Client
}

func NewWebhookSharer(url string, client *http.Client) *WebhookSharer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookSharer{url: strings.TrimSpace(url), client: client}
}

func (s *WebhookSharer) Share(ctx context.Context, p Payload) error {
	if s == nil || s.url == "" {
		return fmt.Errorf("no share destination configured: %w", domain.ErrShareUnavailable)
	}
	body, contentType, err := encodeForm(p)
	if err != nil {
		return fmt.Errorf("encode share form: %v: %w", err, domain.ErrShareUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return fmt.Errorf("build share request: %v: %w", err, domain.ErrShareUnavailable)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("share request: %v: %w", err, domain.ErrShareUnavailable)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("share destination answered %s: %w", resp.Status, domain.ErrShareUnavailable)
	}
	return nil
}

func encodeForm(p Payload) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.WriteField("title", p.Title); err != nil {
		return nil, "", err
	}
	mime := p.MIME
	if mime == "" {
		mime = "image/png"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, p.Filename))
	h.Set("Content-Type", mime)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(p.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var _ Sharer = (*WebhookSharer)(nil)
