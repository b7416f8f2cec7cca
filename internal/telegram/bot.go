package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"morfi-plan/internal/metrics"
	"morfi-plan/internal/planner"
	"morfi-plan/internal/shopping"
)

// UpdatesAPI adds long polling to API.
type UpdatesAPI interface {
	API
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// DocumentLoader reads the application document.
type DocumentLoader interface {
	Load(ctx context.Context) planner.AppData
}

// UsageReporter reads delivery metrics.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot answers read-only commands in the configured chat:
// /semana, /compras, /hoy and /metrics.
type Bot struct {
	api      UpdatesAPI
	notifier *Notifier
	docs     DocumentLoader
	usage    UsageReporter
	chatID   int64
	loc      *time.Location
	dataPath string
	now      func() time.Time
}

// NewBot creates a Bot. usage may be nil.
func NewBot(api UpdatesAPI, chatID int64, docs DocumentLoader, usage UsageReporter, loc *time.Location, dataPath string) *Bot {
	return &Bot{
		api:      api,
		notifier: NewNotifier(api, chatID),
		docs:     docs,
		usage:    usage,
		chatID:   chatID,
		loc:      loc,
		dataPath: dataPath,
		now:      time.Now,
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	slog.Info("telegram bot polling", "chat_id", b.chatID)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate answers one update. Messages from other chats are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}
	if msg.Chat.ID != b.chatID {
		slog.Warn("ignoring telegram message from unknown chat", "chat_id", msg.Chat.ID)
		return
	}

	if err := b.dispatch(ctx, msg.Command()); err != nil {
		slog.Error("telegram command failed", "command", msg.Command(), "error", err)
	}
}

func (b *Bot) dispatch(ctx context.Context, command string) error {
	now := b.now().In(b.loc)

	switch command {
	case "start", "semana":
		doc := b.docs.Load(ctx)
		weekStart := planner.CurrentWeekStart(now)
		planText, _ := formatPlanMarkdownParts(weekStart, doc.PlanRows(0), nil)
		return b.notifier.send(planText)

	case "compras":
		doc := b.docs.Load(ctx)
		_, shoppingText := formatPlanMarkdownParts(now, nil, shopping.Derive(doc.Menus, doc.CurrentWeek()))
		return b.notifier.send(shoppingText)

	case "hoy":
		doc := b.docs.Load(ctx)
		return b.notifier.send(formatDayMeal(planner.CurrentDayMeal(doc.CurrentWeek(), doc.Menus, now)))

	case "metrics":
		var usage []metrics.DailyUsage
		if b.usage != nil {
			u, err := b.usage.GetDailyUsage(ctx, 7)
			if err != nil {
				return fmt.Errorf("failed to read usage: %w", err)
			}
			usage = u
		}
		report := metrics.FormatReport(usage, metrics.GetSysHealth(b.dataPath))
		_, err := b.api.Send(tgbotapi.NewMessage(b.chatID, report))
		return err

	default:
		return b.notifier.send("Comandos: /semana, /compras, /hoy, /metrics")
	}
}

func formatDayMeal(dm *planner.DayMeal) string {
	if dm == nil {
		return "🏖️ Fin de semana, no hay comidas planificadas."
	}
	if dm.Menu == nil {
		return fmt.Sprintf("🍽️ *%s*: sin asignar", dm.Label)
	}
	return fmt.Sprintf("🍽️ *%s*: %s", dm.Label, escape(dm.Menu.Name))
}
