package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"morfi-plan/internal/config"
	"morfi-plan/internal/planner"
)

// API is the part of the Bot API the notifier needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Connect authorizes against the Bot API with the configured token.
func Connect(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	return bot, nil
}

// Notifier posts the weekly plan to one chat.
type Notifier struct {
	api    API
	chatID int64
}

func NewNotifier(api API, chatID int64) *Notifier {
	return &Notifier{api: api, chatID: chatID}
}

// SendWeeklyPlan posts the plan and the shopping list as two messages.
func (n *Notifier) SendWeeklyPlan(ctx context.Context, weekStart time.Time, rows []planner.PlanRow, items []string) error {
	planText, shoppingText := formatPlanMarkdownParts(weekStart, rows, items)
	for _, text := range []string{planText, shoppingText} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.send(text); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatPlanMarkdownParts(weekStart time.Time, rows []planner.PlanRow, items []string) (string, string) {
	var pb strings.Builder
	pb.WriteString(fmt.Sprintf("📅 *Menú Semanal - %s*\n\n", escape(planner.WeekLabel(weekStart))))
	if len(rows) == 0 {
		pb.WriteString("_Sin comidas asignadas_\n")
	}

	var lastDay planner.DayOfWeek
	for _, r := range rows {
		if r.Day != lastDay {
			if lastDay != "" {
				pb.WriteString("\n")
			}
			pb.WriteString(fmt.Sprintf("*%s*\n", r.Day.FullLabel()))
			lastDay = r.Day
		}
		pb.WriteString(fmt.Sprintf("%s: %s\n", r.MealType.Label(), escape(r.MenuName)))
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Lista de Compras*\n\n")
	if len(items) == 0 {
		sb.WriteString("_Lista vacía_\n")
	}
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(item)))
	}

	return pb.String(), sb.String()
}
