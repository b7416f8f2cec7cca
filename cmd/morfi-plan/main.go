package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

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
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fatal("failed to load configuration", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		fatal("failed to initialize database", err)
	}
	defer db.Close()

	docCache, closeCache, err := cache.Open(ctx, cfg, db.SQL)
	if err != nil {
		fatal("failed to open cache", err)
	}
	defer closeCache()

	docs := store.New(jsonbin.NewClient(cfg), docCache, store.OptionsFromConfig(cfg))
	metricsStore := metrics.NewStore(db.SQL)
	history := shopping.NewRepository(db.SQL)
	auth := schedule.NewAuthenticator(cfg.CronSecret)

	application := app.NewApp(docs, mailer.NewFromConfig(cfg), auth, cfg.Location).
		WithMetrics(metricsStore).
		WithHistory(history)

	switch os.Args[1] {
	case "send":
		sendCmd := flag.NewFlagSet("send", flag.ExitOnError)
		trigger := sendCmd.String("trigger", "manual", "scheduled or manual")
		withTelegram := sendCmd.Bool("telegram", cfg.TelegramConfigured(), "Mirror the plan to Telegram")
		sendCmd.Parse(os.Args[2:])

		if *withTelegram {
			botAPI, err := telegram.Connect(cfg)
			if err != nil {
				fatal("failed to connect to telegram", err)
			}
			application.WithNotifier(telegram.NewNotifier(botAPI, cfg.TelegramChatID))
		}

		// The CLI runs with the scheduler's credential so that scheduled
		// runs honour the configured day and hour.
		authorization := ""
		if cfg.CronSecret != "" {
			authorization = "Bearer " + cfg.CronSecret
		}
		res, err := application.SendWeeklyPlan(ctx, app.SendRequest{
			Authorization: authorization,
			Trigger:       schedule.ParseTrigger(*trigger),
		})
		if err != nil {
			fatal("send failed", err)
		}
		if res.Skipped {
			fmt.Println(res.Message)
			return
		}
		fmt.Printf("Digest sent to %d recipient(s), %d shopping item(s).\n", res.Recipients, len(res.ShoppingList))

	case "token":
		tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
		ttl := tokenCmd.Duration("ttl", time.Hour, "Token lifetime")
		tokenCmd.Parse(os.Args[2:])

		if !auth.Enabled() {
			fatal("cannot issue token", errors.New("CRON_SECRET is not set"))
		}
		token, err := auth.IssueToken(*ttl)
		if err != nil {
			fatal("failed to issue token", err)
		}
		fmt.Println(token)

	case "shopping-list":
		for i, item := range application.ShoppingList(ctx) {
			fmt.Printf("%d. %s\n", i+1, item)
		}

	case "export":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(docs.Load(ctx)); err != nil {
			fatal("failed to encode document", err)
		}

	case "history":
		historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
		limit := historyCmd.Int("limit", 10, "Number of lists to show")
		historyCmd.Parse(os.Args[2:])

		lists, err := history.ListRecent(ctx, *limit)
		if err != nil {
			fatal("failed to read history", err)
		}
		for _, l := range lists {
			fmt.Printf("%s  week of %s via %s: %s\n",
				l.CreatedAt.Format(time.DateTime), l.WeekStart.Format(time.DateOnly), l.Channel, strings.Join(l.Items, ", "))
		}

	case "metrics":
		metricsCmd := flag.NewFlagSet("metrics", flag.ExitOnError)
		days := metricsCmd.Int("days", 7, "Report the last N days")
		metricsCmd.Parse(os.Args[2:])

		usage, err := metricsStore.GetDailyUsage(ctx, *days)
		if err != nil {
			fatal("failed to read metrics", err)
		}
		fmt.Print(metrics.FormatReport(usage, metrics.GetSysHealth(filepath.Dir(cfg.DatabasePath))))

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(ctx, *days)
		if err != nil {
			fatal("cleanup failed", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage: morfi-plan <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  send               Send the weekly digest (-trigger scheduled|manual)")
	fmt.Println("  token              Print a signed scheduler token (-ttl 1h)")
	fmt.Println("  shopping-list      Print the current week's shopping list")
	fmt.Println("  export             Print the application document as JSON")
	fmt.Println("  history            Show delivered shopping lists (-limit 10)")
	fmt.Println("  metrics            Show delivery usage and system health (-days 7)")
	fmt.Println("  metrics-cleanup    Remove old metric records (-days 30)")
}
