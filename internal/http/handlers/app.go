package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/catalog"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/gallery"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/middleware"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/pipeline"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/share"
)

// BlobReader is the read side of the local image store.
type BlobReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

type App struct {
	Pipeline      *pipeline.Pipeline
	Gallery       *gallery.Store
	Catalog       *catalog.Catalog
	Blobs         BlobReader
	Sharer        share.Sharer
	HTTPClient    *http.Client
	Logger        infra.Logger
	MaxImageBytes int64 // zero means image.MaxImageBytes

}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

// fail maps a domain error to its status code and a message in the request
// locale. Generation failures keep the upstream message verbatim.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrEmptyMood):
		a.error(w, http.StatusBadRequest, "validation_error", localize(locale, msgEmptyMood))
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusForbidden, "quota_exceeded", localize(locale, msgQuotaExceeded, a.limit()))
	case errors.Is(err, domain.ErrGenerationInProgress):
		a.error(w, http.StatusConflict, "generation_in_progress", localize(locale, msgInProgress))
	case errors.Is(err, domain.ErrGenerationFailed):
		a.error(w, http.StatusBadGateway, "generation_failed", pipeline.UserMessage(err, a.limit()))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", localize(locale, msgNotFound))
	case errors.Is(err, domain.ErrShareUnavailable):
		a.error(w, http.StatusNotImplemented, "share_unavailable", localize(locale, msgShareFailed))
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", localize(locale, msgInternal))
	}
}

func (a *App) limit() int {
	if a.Pipeline == nil {
		return pipeline.DefaultLimit
	}
	return a.Pipeline.Limit()
}

func (a *App) catalog() *catalog.Catalog {
	if a.Catalog == nil {
		return catalog.Default()
	}
	return a.Catalog
}
