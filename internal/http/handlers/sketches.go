package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/middleware"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/pipeline"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/share"
	"github.com/PiusEzekiel/Sketch-My-Mood/pkg/zip"

	"github.com/go-chi/chi/v5"
)

const maxCreateBody = 64 << 10

// CreateSketch runs one attempt of the pipeline.
func (a *App) CreateSketch(w http.ResponseWriter, r *http.Request) {
	var in pipeline.Input
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCreateBody)).Decode(&in); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", localize(middleware.LocaleFromContext(r.Context()), msgBadRequest))
		return
	}
	sk, err := a.Pipeline.Generate(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"sketch": sk, "status": a.Pipeline.Status()})
}

func (a *App) ListSketches(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Gallery.List(), "status": a.Pipeline.Status()})
}

func (a *App) GetSketch(w http.ResponseWriter, r *http.Request) {
	sk, err := a.Gallery.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sk)
}

func (a *App) DeleteSketch(w http.ResponseWriter, r *http.Request) {
	if err := a.Pipeline.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": a.Pipeline.Status()})
}

// ResetSketches clears the gallery and the attempt counter.
func (a *App) ResetSketches(w http.ResponseWriter, r *http.Request) {
	if err := a.Pipeline.Reset(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": a.Pipeline.Status()})
}

// SketchPrompt returns the refined prompt for the copy action.
func (a *App) SketchPrompt(w http.ResponseWriter, r *http.Request) {
	sk, err := a.Gallery.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, sk.RefinedPrompt)
}

func (a *App) DownloadSketch(w http.ResponseWriter, r *http.Request) {
	sk, err := a.Gallery.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	img, err := a.loadImage(r.Context(), sk)
	if err != nil {
		a.imageFailed(w, r, sk, err)
		return
	}
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", downloadName(sk, img.MIME)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// ShareSketch hands the image to the configured sharer.
func (a *App) ShareSketch(w http.ResponseWriter, r *http.Request) {
	sk, err := a.Gallery.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if a.Sharer == nil {
		a.fail(w, r, domain.ErrShareUnavailable)
		return
	}
	img, err := a.loadImage(r.Context(), sk)
	if err != nil {
		a.imageFailed(w, r, sk, err)
		return
	}
	payload := share.Payload{
		Title:    fmt.Sprintf("My %s Mood", sk.OriginalMood),
		Filename: "mood-sketch.png",
		MIME:     img.MIME,
		Data:     img.Data,
	}
	if err := a.Sharer.Share(r.Context(), payload); err != nil {
		a.Logger.Warn().Err(err).Str("sketch_id", sk.ID).Msg("share failed")
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"shared": true, "title": payload.Title})
}

// ArchiveSketches bundles every gallery image into one zip. Sketches whose
// image can no longer be resolved are skipped.
func (a *App) ArchiveSketches(w http.ResponseWriter, r *http.Request) {
	sketches := a.Gallery.List()
	entries := make([]zip.Entry, 0, len(sketches))
	for _, sk := range sketches {
		img, err := a.loadImage(r.Context(), sk)
		if err != nil {
			a.Logger.Warn().Err(err).Str("sketch_id", sk.ID).Msg("skipping sketch in archive")
			continue
		}
		entries = append(entries, zip.Entry{
			Filename: downloadName(sk, img.MIME),
			Modified: sk.CreatedAt(),
			Data:     img.Data,
		})
	}
	archive, err := zip.Archive(entries)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=sketch-my-mood-%d.zip", time.Now().UnixMilli()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) imageFailed(w http.ResponseWriter, r *http.Request, sk domain.MoodSketch, err error) {
	if errors.Is(err, errImageUnavailable) {
		a.Logger.Warn().Err(err).Str("sketch_id", sk.ID).Msg("sketch image unavailable")
		a.error(w, http.StatusNotFound, "image_unavailable", localize(middleware.LocaleFromContext(r.Context()), msgNoImage))
		return
	}
	a.fail(w, r, err)
}
