package app

import (
	"context"
	"log/slog"
	"time"

	"morfi-plan/internal/mailer"
	"morfi-plan/internal/metrics"
	"morfi-plan/internal/planner"
	"morfi-plan/internal/schedule"
	"morfi-plan/internal/shopping"
)

// SendRequest is one call of the send operation.
type SendRequest struct {
	Authorization string
	Trigger       schedule.Trigger
}

// SendResult describes a send that did not fail. Skipped is set when
// the scheduling predicate declined.
type SendResult struct {
	Skipped      bool
	Message      string
	Recipients   int
	ShoppingList []string
}

// SendWeeklyPlan emails the current week's plan and shopping list.
// Scheduler calls only go out at the configured UTC day and hour.
func (a *App) SendWeeklyPlan(ctx context.Context, req SendRequest) (SendResult, error) {
	now := a.now()
	doc := a.docs.MigrateSettings(ctx, a.docs.Load(ctx))

	authenticated := a.auth.Authenticate(req.Authorization)
	trigger := req.Trigger
	if trigger == "" {
		trigger = schedule.TriggerScheduled
	}

	decision := schedule.Evaluate(now, doc.Config, authenticated, trigger)
	if !decision.Proceed {
		slog.Info("scheduled send skipped", "reason", decision.Reason)
		return SendResult{Skipped: true, Message: decision.Reason}, nil
	}
	if !authenticated {
		trigger = schedule.TriggerManual
	}

	week := doc.CurrentWeek()
	if len(week) == 0 {
		return SendResult{}, ErrNoAssignments
	}
	recipients := doc.Config.ValidRecipients()
	if len(recipients) == 0 {
		return SendResult{}, ErrNoRecipients
	}

	items := shopping.Derive(doc.Menus, week)
	rows := doc.PlanRows(0)
	weekStart := planner.CurrentWeekStart(now.In(a.loc))

	start := time.Now()
	res := a.mailer.SendWeeklyDigest(ctx, mailer.Digest{
		Recipients:   recipients,
		WeekStart:    weekStart,
		Plan:         rows,
		ShoppingList: items,
	})
	a.record(ctx, metrics.DispatchMetric{
		Channel:    metrics.ChannelEmail,
		Trigger:    string(trigger),
		Recipients: res.Recipients,
		Success:    res.Success,
		Error:      res.Error,
		LatencyMS:  time.Since(start).Milliseconds(),
	})
	if !res.Success {
		return SendResult{}, &DispatchError{Message: res.Error}
	}

	a.saveHistory(ctx, weekStart, items, metrics.ChannelEmail)
	a.mirror(ctx, weekStart, rows, items, trigger)

	return SendResult{Recipients: res.Recipients, ShoppingList: items}, nil
}

func (a *App) mirror(ctx context.Context, weekStart time.Time, rows []planner.PlanRow, items []string, trigger schedule.Trigger) {
	if a.notifier == nil {
		return
	}
	start := time.Now()
	err := a.notifier.SendWeeklyPlan(ctx, weekStart, rows, items)
	m := metrics.DispatchMetric{
		Channel:   metrics.ChannelTelegram,
		Trigger:   string(trigger),
		Success:   err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		slog.Warn("telegram mirror failed", "error", err)
		m.Error = err.Error()
	} else {
		a.saveHistory(ctx, weekStart, items, metrics.ChannelTelegram)
	}
	a.record(ctx, m)
}

func (a *App) record(ctx context.Context, m metrics.DispatchMetric) {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.Record(ctx, m); err != nil {
		slog.Warn("failed to record dispatch metric", "error", err)
	}
}

func (a *App) saveHistory(ctx context.Context, weekStart time.Time, items []string, channel string) {
	if a.history == nil {
		return
	}
	_, err := a.history.Save(ctx, &shopping.ShoppingList{
		WeekStart: weekStart,
		Items:     items,
		Channel:   channel,
	})
	if err != nil {
		slog.Warn("failed to save shopping list history", "error", err)
	}
}
