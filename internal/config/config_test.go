package config

import (
	"log/slog"
	"os"
	"testing"
)

var allKeys = []string{
	"JSONBIN_API_KEY", "NEXT_PUBLIC_JSONBIN_API_KEY", "JSONBIN_API_URL", "JSONBIN_BIN_ID",
	"NEXT_PUBLIC_JSONBIN_BIN_ID", "JSONBIN_COLLECTION_ID", "JSONBIN_BIN_NAME",
	"RESEND_API_KEY", "EMAIL_FROM", "CRON_SECRET", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"DATABASE_PATH", "CACHE_BACKEND", "CACHE_DIR", "REDIS_ADDR", "REDIS_PASSWORD",
	"TIMEZONE", "DEFAULT_RECIPIENT", "PORT", "LOG_LEVEL", "SEND_RATE_PER_MINUTE",
}

// clearEnv blanks every variable the loader reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.RemoteConfigured() {
			t.Error("Expected remote store to be unconfigured")
		}
		if cfg.TelegramConfigured() {
			t.Error("Expected telegram to be unconfigured")
		}
		if cfg.JSONBinAPIURL != defaultJSONBinAPIURL {
			t.Errorf("Expected default API URL, got '%s'", cfg.JSONBinAPIURL)
		}
		if cfg.CacheBackend != CacheSQLite {
			t.Errorf("Expected sqlite cache, got '%s'", cfg.CacheBackend)
		}
		if cfg.Location.String() != defaultTimezone {
			t.Errorf("Expected timezone '%s', got '%s'", defaultTimezone, cfg.Location)
		}
		if cfg.Port != "8080" || cfg.SendRatePerMinute != defaultSendRate {
			t.Errorf("Unexpected defaults: port=%s rate=%d", cfg.Port, cfg.SendRatePerMinute)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Errorf("Expected info log level, got %v", cfg.LogLevel)
		}
	})

	t.Run("Success", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JSONBIN_API_KEY", "master")
		t.Setenv("JSONBIN_COLLECTION_ID", "col-1")
		t.Setenv("TELEGRAM_BOT_TOKEN", "tg")
		t.Setenv("TELEGRAM_CHAT_ID", "-100123")
		t.Setenv("TIMEZONE", "UTC")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !cfg.RemoteConfigured() {
			t.Error("Expected remote store to be configured")
		}
		if cfg.TelegramChatID != -100123 || !cfg.TelegramConfigured() {
			t.Errorf("Expected telegram chat -100123, got %d", cfg.TelegramChatID)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Errorf("Expected debug log level, got %v", cfg.LogLevel)
		}
	})

	t.Run("LegacyVariableNames", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXT_PUBLIC_JSONBIN_API_KEY", "legacy-key")
		t.Setenv("NEXT_PUBLIC_JSONBIN_BIN_ID", "legacy-bin")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.JSONBinAPIKey != "legacy-key" || cfg.JSONBinBinID != "legacy-bin" {
			t.Errorf("Expected legacy values, got key=%s bin=%s", cfg.JSONBinAPIKey, cfg.JSONBinBinID)
		}
	})

	t.Run("InvalidChatID", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_CHAT_ID", "abc")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid TELEGRAM_CHAT_ID, got nil")
		}
	})

	t.Run("InvalidTimezone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TIMEZONE", "Mars/Olympus")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid TIMEZONE, got nil")
		}
	})

	t.Run("RedisWithoutAddr", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CACHE_BACKEND", "redis")
		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for redis without REDIS_ADDR, got nil")
		}
		expectedError := "CACHE_BACKEND=redis requires REDIS_ADDR"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})
}
