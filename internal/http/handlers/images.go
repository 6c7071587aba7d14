package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/middleware"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/image"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/storage"

	"github.com/go-chi/chi/v5"
)

var errImageUnavailable = errors.New("image unavailable")

type imageFile struct {
	Data []byte
	MIME string
}

// ServeImage streams a stored blob for GET /v1/images/*.
func (a *App) ServeImage(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	key, err := storage.SanitizeKey(chi.URLParam(r, "*"))
	if err != nil || a.Blobs == nil {
		a.error(w, http.StatusNotFound, "not_found", localize(locale, msgNoImage))
		return
	}
	data, err := a.Blobs.Read(r.Context(), key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			a.Logger.Error().Err(err).Str("key", key).Msg("failed to read image blob")
		}
		a.error(w, http.StatusNotFound, "not_found", localize(locale, msgNoImage))
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// loadImage resolves the bytes behind a sketch's image reference: an inline
// data: URI, a key in the local blob store, or a remote http(s) URL.
func (a *App) loadImage(ctx context.Context, sk domain.MoodSketch) (imageFile, error) {
	ref := strings.TrimSpace(sk.ImageURL)
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}
	if key, ok := image.StorageKeyFromURL(ref); ok {
		if a.Blobs == nil {
			return imageFile{}, errImageUnavailable
		}
		data, err := a.Blobs.Read(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotExist) {
				return imageFile{}, errImageUnavailable
			}
			return imageFile{}, err
		}
		return imageFile{Data: data, MIME: http.DetectContentType(data)}, nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return imageFile{}, errImageUnavailable
	}
	return a.fetchImage(ctx, u.String())
}

func (a *App) fetchImage(ctx context.Context, target string) (imageFile, error) {
	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return imageFile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return imageFile{}, fmt.Errorf("%w: %v", errImageUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return imageFile{}, fmt.Errorf("%w: %s", errImageUnavailable, resp.Status)
	}
	data, err := image.ReadLimited(resp.Body, a.MaxImageBytes)
	if err != nil {
		return imageFile{}, fmt.Errorf("%w: %v", errImageUnavailable, err)
	}
	if len(data) == 0 {
		return imageFile{}, errImageUnavailable
	}
	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	return imageFile{Data: data, MIME: mime}, nil
}

func decodeDataURI(ref string) (imageFile, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return imageFile{}, errImageUnavailable
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return imageFile{}, errImageUnavailable
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return imageFile{Data: data, MIME: mime}, nil
}

func downloadName(sk domain.MoodSketch, mime string) string {
	return fmt.Sprintf("sketch-my-mood-%d.%s", sk.Timestamp, image.Extension(mime))
}
