package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/catalog"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/gallery"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/http/handlers"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/http/httpapi"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra/credentials"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra/geoip"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/kv"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/metrics"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/middleware"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/pipeline"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("api stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *infra.Config, logger infra.Logger) error {
	store, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info().Str("backend", cfg.StoreBackend).Msg("state store ready")

	blobs, err := storage.NewFileStore(cfg.BlobPath)
	if err != nil {
		return err
	}

	keys, err := resolveKeys(ctx, cfg, credentials.NewStore(store))
	if err != nil {
		return err
	}

	httpClient := infra.NewHTTPClient(cfg.OutboundTimeout)
	refiner := newRefiner(cfg, keys, httpClient, logger)
	generator, err := newGenerator(cfg, keys, httpClient, blobs)
	if err != nil {
		return err
	}

	sketches := gallery.NewStore(store, &logger)
	if err := sketches.Load(ctx); err != nil {
		return err
	}
	metrics.GallerySize.Set(float64(len(sketches.List())))

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geo.Close()
	var lookup middleware.CountryLookup
	if geo.Available() {
		lookup = geo.CountryCode
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	sharer, err := newSharer(cfg, httpClient)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Options{
		Refiner:     refiner,
		Generator:   generator,
		Gallery:     sketches,
		Blobs:       blobs,
		Styles:      cat.Styles,
		Limit:       cfg.MaxGenerations,
		StepTimeout: cfg.GenerationTimeout,
		Logger:      &logger,
	})
	if err != nil {
		return err
	}

	app := &handlers.App{
		Pipeline:   p,
		Gallery:    sketches,
		Catalog:    cat,
		Blobs:      blobs,
		Sharer:     sharer,
		HTTPClient: httpClient,
		Logger:     logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		TrustedProxies:  proxies,
		Logger:          logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", server.Addr()).
			Str("refiner", cfg.RefinerProvider).
			Str("image", cfg.ImageProvider).
			Int("limit", p.Limit()).
			Msg("api listening")
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return g.Wait()
}
