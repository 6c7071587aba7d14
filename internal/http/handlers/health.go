package handlers

import (
	"net/http"
	"time"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/middleware"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.catalog().Styles})
}

func (a *App) Moods(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.catalog().Moods})
}

func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Pipeline.Status())
}

// RateLimited answers requests rejected by the rate limiter.
func (a *App) RateLimited(w http.ResponseWriter, r *http.Request, _ time.Duration) {
	locale := middleware.LocaleFromContext(r.Context())
	a.error(w, http.StatusTooManyRequests, "rate_limited", localize(locale, msgRateLimited))
}
