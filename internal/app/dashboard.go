package app

import (
	"context"
	"log/slog"
	"time"

	"morfi-plan/internal/planner"
	"morfi-plan/internal/shopping"
)

// Dashboard aggregates what the home screen shows.
type Dashboard struct {
	WeekStart       time.Time               `json:"weekStart"`
	NextWeekStart   time.Time               `json:"nextWeekStart"`
	Days            []planner.WeekDay       `json:"days"`
	Menus           []planner.Menu          `json:"menus"`
	Assignments     []planner.Assignment    `json:"assignments"`
	NextMeal        *planner.NextMealResult `json:"nextMeal"`
	CurrentMeal     *planner.DayMeal        `json:"currentMeal"`
	ShoppingList    []string                `json:"shoppingList"`
	EmailConfigured bool                    `json:"emailConfigured"`
	// Delivered is the last list sent for this week, nil when none was.
	Delivered *shopping.ShoppingList `json:"delivered"`
}

// Dashboard builds the home screen for the week containing now.
func (a *App) Dashboard(ctx context.Context, now time.Time) Dashboard {
	now = now.In(a.loc)
	doc := a.docs.Load(ctx)
	week := doc.CurrentWeek()
	if week == nil {
		week = []planner.Assignment{}
	}
	weekStart := planner.CurrentWeekStart(now)

	d := Dashboard{
		WeekStart:       weekStart,
		NextWeekStart:   planner.NextWeekStart(now),
		Days:            planner.WeekDays(weekStart),
		Menus:           doc.Menus,
		Assignments:     week,
		NextMeal:        planner.NextMeal(week, doc.Menus, now),
		CurrentMeal:     planner.CurrentDayMeal(week, doc.Menus, now),
		ShoppingList:    shopping.Derive(doc.Menus, week),
		EmailConfigured: a.mailer.IsConfigured(),
	}
	if a.history != nil {
		delivered, err := a.history.GetByWeek(ctx, weekStart)
		if err != nil {
			slog.Warn("failed to read delivered list", "error", err)
		}
		d.Delivered = delivered
	}
	return d
}
