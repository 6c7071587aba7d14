package httpapi

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/http/handlers"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
	Logger         infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.TrustedRealIP(opts.TrustedProxies),
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(opts.Logger),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/v1/styles", app.Styles)
	r.Get("/v1/moods", app.Moods)
	r.Get("/v1/status", app.Status)

	r.Route("/v1/sketches", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute, app.RateLimited)).Post("/", app.CreateSketch)
		r.Get("/", app.ListSketches)
		r.Delete("/", app.ResetSketches)
		r.Get("/archive", app.ArchiveSketches)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetSketch)
			r.Delete("/", app.DeleteSketch)
			r.Get("/download", app.DownloadSketch)
			r.Get("/prompt", app.SketchPrompt)
			r.Post("/share", app.ShareSketch)
		})
	})

	r.Get("/v1/images/*", app.ServeImage)

	return r
}
