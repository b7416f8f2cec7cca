package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo
)

const (
	defaultJSONBinAPIURL = "https://api.jsonbin.io/v3"
	defaultBinName       = "morfi-plan-data"
	defaultEmailFrom     = "Morfi-Plan <noreply@morfi-plan.resend.dev>"
	defaultDatabasePath  = "data/morfi.db"
	defaultCacheDir      = "data/cache"
	defaultTimezone      = "America/Argentina/Buenos_Aires"
	defaultPort          = "8080"
	defaultSendRate      = 6
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config holds the configuration for the application. Every setting is
// optional; missing credentials turn the matching feature off.
type Config struct {
	// Remote document store
	JSONBinAPIKey       string
	JSONBinAPIURL       string
	JSONBinBinID        string
	JSONBinCollectionID string
	JSONBinBinName      string

	// Email
	ResendAPIKey string
	EmailFrom    string

	// Scheduler shared secret
	CronSecret string

	// Telegram Config
	TelegramBotToken string
	TelegramChatID   int64

	// Local persistence
	DatabasePath  string
	CacheBackend  string
	CacheDir      string
	RedisAddr     string
	RedisPassword string

	Location          *time.Location
	DefaultRecipient  string
	Port              string
	LogLevel          slog.Level
	SendRatePerMinute int
}

// NewFromEnv creates a new Config object from environment variables.
// Only malformed values are errors.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		JSONBinAPIKey:       os.Getenv("JSONBIN_API_KEY"),
		JSONBinAPIURL:       getenv("JSONBIN_API_URL", defaultJSONBinAPIURL),
		JSONBinBinID:        os.Getenv("JSONBIN_BIN_ID"),
		JSONBinCollectionID: os.Getenv("JSONBIN_COLLECTION_ID"),
		JSONBinBinName:      getenv("JSONBIN_BIN_NAME", defaultBinName),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		EmailFrom:           getenv("EMAIL_FROM", defaultEmailFrom),
		CronSecret:          os.Getenv("CRON_SECRET"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabasePath:        getenv("DATABASE_PATH", defaultDatabasePath),
		CacheBackend:        strings.ToLower(getenv("CACHE_BACKEND", CacheSQLite)),
		CacheDir:            getenv("CACHE_DIR", defaultCacheDir),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		DefaultRecipient:    os.Getenv("DEFAULT_RECIPIENT"),
		Port:                getenv("PORT", defaultPort),
		SendRatePerMinute:   defaultSendRate,
	}

	// Legacy variable names used by the first deployments.
	if cfg.JSONBinAPIKey == "" {
		cfg.JSONBinAPIKey = os.Getenv("NEXT_PUBLIC_JSONBIN_API_KEY")
	}
	if cfg.JSONBinBinID == "" {
		cfg.JSONBinBinID = os.Getenv("NEXT_PUBLIC_JSONBIN_BIN_ID")
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.TelegramChatID = id
	}

	switch cfg.CacheBackend {
	case CacheSQLite, CacheFile:
	case CacheRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	loc, err := time.LoadLocation(getenv("TIMEZONE", defaultTimezone))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	if v := os.Getenv("SEND_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SEND_RATE_PER_MINUTE %q", v)
		}
		cfg.SendRatePerMinute = n
	}

	return cfg, nil
}

// RemoteConfigured reports whether the remote document store can be used.
func (c *Config) RemoteConfigured() bool {
	return c.JSONBinAPIKey != "" && (c.JSONBinBinID != "" || c.JSONBinCollectionID != "")
}

// TelegramConfigured reports whether digests are mirrored to Telegram.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
