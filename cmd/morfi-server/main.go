package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"morfi-plan/internal/api"
	"morfi-plan/internal/app"
	"morfi-plan/internal/cache"
	"morfi-plan/internal/config"
	"morfi-plan/internal/database"
	"morfi-plan/internal/jsonbin"
	"morfi-plan/internal/mailer"
	"morfi-plan/internal/metrics"
	"morfi-plan/internal/schedule"
	"morfi-plan/internal/shopping"
	"morfi-plan/internal/store"
	"morfi-plan/internal/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading environment variables")
	}

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Local persistence
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	docCache, closeCache, err := cache.Open(ctx, cfg, db.SQL)
	if err != nil {
		slog.Error("failed to open cache", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer closeCache()

	// 3. Document store
	docs := store.New(jsonbin.NewClient(cfg), docCache, store.OptionsFromConfig(cfg))
	if docs.RemoteEnabled() {
		if id, err := docs.Bootstrap(ctx); err != nil {
			slog.Warn("remote store not reachable, starting from local data", "error", err)
		} else {
			slog.Info("remote store ready", "bin_id", id)
		}
	} else {
		slog.Info("remote store not configured, running on local data only")
	}

	// 4. Services
	mail := mailer.NewFromConfig(cfg)
	if !mail.IsConfigured() {
		slog.Warn("RESEND_API_KEY not set, email sends will fail")
	}
	metricsStore := metrics.NewStore(db.SQL)
	history := shopping.NewRepository(db.SQL)

	application := app.NewApp(docs, mail, schedule.NewAuthenticator(cfg.CronSecret), cfg.Location).
		WithMetrics(metricsStore).
		WithHistory(history)

	// 5. Optional Telegram channel
	if cfg.TelegramConfigured() {
		botAPI, err := telegram.Connect(cfg)
		if err != nil {
			slog.Error("telegram disabled", "error", err)
		} else {
			slog.Info("telegram authorized", "account", botAPI.Self.UserName)
			bot := telegram.NewBot(botAPI, cfg.TelegramChatID, docs, metricsStore, cfg.Location, filepath.Dir(cfg.DatabasePath))
			application.WithNotifier(telegram.NewNotifier(botAPI, cfg.TelegramChatID))
			go bot.Run(ctx)
		}
	}

	// 6. HTTP server with graceful shutdown
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Options{
		Docs:          docs,
		Planner:       application,
		Usage:         metricsStore,
		History:       history,
		DataPath:      filepath.Dir(cfg.DatabasePath),
		SendPerMinute: cfg.SendRatePerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("morfi-plan server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server exiting")
}
