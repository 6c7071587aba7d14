// Command moodctl administers the gallery and stored provider keys on the
// configured state backend. The api keeps the gallery in memory, so changes
// made here are picked up on its next start.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/gallery"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/infra/credentials"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/kv"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/providers/image"
	"github.com/PiusEzekiel/Sketch-My-Mood/internal/storage"
)

const usage = `usage: moodctl <command> [flags]

commands:
  list                               print the gallery and attempt count
  remove -id <sketch id>             delete one sketch and its image
  reset                              clear the gallery and the attempt count
  set-key -provider <p> -key <key>   store an API key (pollinations or gemini)
  delete-key -provider <p>           remove a stored API key
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "moodctl").Str("action", os.Args[1]).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		exitWithError(fmt.Errorf("open state store: %w", err))
	}
	defer store.Close()

	if err := run(ctx, cfg, store, logger, os.Args[1], os.Args[2:]); err != nil {
		store.Close()
		exitWithError(err)
	}
}

func run(ctx context.Context, cfg *infra.Config, store kv.Store, logger infra.Logger, cmd string, args []string) error {
	switch cmd {
	case "list":
		g, err := loadGallery(ctx, store, logger)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"count":    g.Count(),
			"limit":    cfg.MaxGenerations,
			"sketches": g.List(),
		})

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ExitOnError)
		id := fs.String("id", "", "sketch id to remove")
		_ = fs.Parse(args)
		if strings.TrimSpace(*id) == "" {
			return errors.New("-id is required")
		}
		g, err := loadGallery(ctx, store, logger)
		if err != nil {
			return err
		}
		removed, err := g.Remove(ctx, strings.TrimSpace(*id))
		if err != nil {
			return fmt.Errorf("remove %s: %w", *id, err)
		}
		deleteBlobs(ctx, cfg, logger, removed)
		fmt.Printf("removed sketch %s (%s)\n", removed.ID, removed.OriginalMood)
		return nil

	case "reset":
		g, err := loadGallery(ctx, store, logger)
		if err != nil {
			return err
		}
		removed, err := g.ResetAll(ctx)
		if err != nil {
			return fmt.Errorf("reset gallery: %w", err)
		}
		deleteBlobs(ctx, cfg, logger, removed...)
		fmt.Printf("gallery reset, %d sketches removed\n", len(removed))
		return nil

	case "set-key":
		fs := flag.NewFlagSet("set-key", flag.ExitOnError)
		provider := fs.String("provider", credentials.ProviderPollinations, "provider to configure (pollinations or gemini)")
		key := fs.String("key", "", "API key (falls back to POLLINATIONS_API_KEY or GEMINI_API_KEY)")
		_ = fs.Parse(args)
		value := strings.TrimSpace(*key)
		if value == "" {
			switch strings.ToLower(strings.TrimSpace(*provider)) {
			case credentials.ProviderGemini:
				value = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
			default:
				value = strings.TrimSpace(os.Getenv("POLLINATIONS_API_KEY"))
			}
		}
		if err := credentials.NewStore(store).SetToken(ctx, *provider, value); err != nil {
			return err
		}
		fmt.Printf("%s API key stored successfully\n", strings.ToUpper(*provider))
		return nil

	case "delete-key":
		fs := flag.NewFlagSet("delete-key", flag.ExitOnError)
		provider := fs.String("provider", credentials.ProviderPollinations, "provider to clear (pollinations or gemini)")
		_ = fs.Parse(args)
		if err := credentials.NewStore(store).DeleteToken(ctx, *provider); err != nil {
			return err
		}
		fmt.Printf("%s API key removed\n", strings.ToUpper(*provider))
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadGallery(ctx context.Context, store kv.Store, logger infra.Logger) (*gallery.Store, error) {
	g := gallery.NewStore(store, &logger)
	if err := g.Load(ctx); err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}
	return g, nil
}

func deleteBlobs(ctx context.Context, cfg *infra.Config, logger infra.Logger, sketches ...domain.MoodSketch) {
	blobs, err := storage.NewFileStore(cfg.BlobPath)
	if err != nil {
		logger.Warn().Err(err).Msg("blob store unavailable, images left in place")
		return
	}
	for _, sk := range sketches {
		key, ok := image.StorageKeyFromURL(sk.ImageURL)
		if !ok {
			continue
		}
		if err := blobs.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to delete image blob")
		}
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
