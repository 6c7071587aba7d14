package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by STORE_BACKEND.
const (
	StoreBackendFile     = "file"
	StoreBackendSQLite   = "sqlite"
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendMemory   = "memory"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	PublicBaseURL string

	StoreBackend  string
	StatePath     string
	SQLitePath    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	BlobPath      string

	RefinerProvider string
	TextAPIKey      string
	TextBaseURL     string
	TextModel       string

	ImageProvider string
	ImageAPIKey   string
	ImageBaseURL  string
	ImageModel    string
	ImageWidth    int
	ImageHeight   int

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiTextModel  string
	GeminiImageModel string

	MaxGenerations    int
	GenerationTimeout time.Duration
	OutboundTimeout   time.Duration

	CatalogPath      string
	ShareWebhookURL  string
	TelegramBotToken string
	TelegramChatID   int64
	GeoIPDBPath      string
	DefaultLocale    string
	AllowedOrigins   []string
	TrustedProxies   []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          port,
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreBackendFile)),
		StatePath:     getEnv("STATE_PATH", "./data/state"),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/sketch-my-mood.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "sketch-my-mood:"),
		BlobPath:      getEnv("BLOB_PATH", "./data/blobs"),

		RefinerProvider: strings.ToLower(getEnv("REFINER_PROVIDER", "openai")),
		TextAPIKey:      strings.TrimSpace(getEnv("TEXT_API_KEY", os.Getenv("POLLINATIONS_API_KEY"))),
		TextBaseURL:     getEnv("TEXT_BASE_URL", "https://gen.pollinations.ai/v1"),
		TextModel:       getEnv("TEXT_MODEL", "nova-fast"),

		ImageProvider: strings.ToLower(getEnv("IMAGE_PROVIDER", "pollinations")),
		ImageAPIKey:   strings.TrimSpace(getEnv("IMAGE_API_KEY", os.Getenv("POLLINATIONS_API_KEY"))),
		ImageBaseURL:  getEnv("IMAGE_BASE_URL", "https://gen.pollinations.ai"),
		ImageModel:    getEnv("IMAGE_MODEL", "flux"),
		ImageWidth:    getEnvInt("IMAGE_WIDTH", 1024),
		ImageHeight:   getEnvInt("IMAGE_HEIGHT", 1024),

		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:    os.Getenv("GEMINI_BASE_URL"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-3-flash-preview"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),

		MaxGenerations:    getEnvInt("MAX_GENERATIONS", 3),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)),
		OutboundTimeout:   time.Second * time.Duration(getEnvInt("OUTBOUND_TIMEOUT_SECONDS", 60)),

		CatalogPath:      os.Getenv("CATALOG_PATH"),
		ShareWebhookURL:  strings.TrimSpace(os.Getenv("SHARE_WEBHOOK_URL")),
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		TrustedProxies:   getEnvList("TRUSTED_PROXIES", nil),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
	}

	if cfg.MaxGenerations < 1 {
		return nil, fmt.Errorf("MAX_GENERATIONS must be at least 1")
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be a numeric chat id: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 30 * time.Second
	}

	switch cfg.StoreBackend {
	case StoreBackendFile, StoreBackendSQLite, StoreBackendMemory:
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
