// Package image renders a refined prompt into an image and returns a
// reference the client can display.
package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Request is the input of every image backend.
type Request struct {
	Prompt string
	Style  string
}

// Result references the generated image. URL is either a data: URI or the
// local path the blob store serves it under.
type Result struct {
	URL        string
	StorageKey string
	MIME       string
	Bytes      int
}

// Generator is the contract implemented by all image backends. Every error it
// returns matches domain.ErrGenerationFailed.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// BlobWriter persists generated bytes and returns the cleaned key.
type BlobWriter interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// MaxImageBytes caps image bodies read from remote hosts.
const MaxImageBytes = 20 << 20

// ErrTooLarge is returned by ReadLimited when a body exceeds its limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// ReadLimited reads r up to limit bytes and fails rather than truncating a
// larger body.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// ImagePathPrefix is the route the blob store is served under.
const ImagePathPrefix = "/v1/images/"

// ImageURL returns the locally addressable URL of a stored key.
func ImageURL(key string) string {
	return ImagePathPrefix + strings.TrimLeft(key, "/")
}

// StorageKeyFromURL reverses ImageURL. ok is false for data: URIs and
// foreign URLs.
func StorageKeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, ImagePathPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, ImagePathPrefix)
	return key, key != ""
}

func normalizeFormat(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}

// Extension returns the file extension for an image MIME type; unknown types
// map to png.
func Extension(mime string) string {
	switch normalizeFormat(mime) {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
