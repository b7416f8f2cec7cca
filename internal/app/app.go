package app

import (
	"context"
	"errors"
	"time"

	"morfi-plan/internal/mailer"
	"morfi-plan/internal/metrics"
	"morfi-plan/internal/planner"
	"morfi-plan/internal/shopping"
)

var (
	ErrNoAssignments = errors.New("no assignments for the current week")
	ErrNoRecipients  = errors.New("no recipient emails configured")
)

// DispatchError carries the provider's message for a failed send.
type DispatchError struct {
	Message string
}

func (e *DispatchError) Error() string {
	return "dispatch failed: " + e.Message
}

// DocumentStore is the subset of the store the use cases need.
type DocumentStore interface {
	Load(ctx context.Context) planner.AppData
	MigrateSettings(ctx context.Context, doc planner.AppData) planner.AppData
}

// Mailer sends the weekly digest.
type Mailer interface {
	IsConfigured() bool
	SendWeeklyDigest(ctx context.Context, d mailer.Digest) mailer.Result
}

// PlanNotifier mirrors the plan to a secondary channel.
type PlanNotifier interface {
	SendWeeklyPlan(ctx context.Context, weekStart time.Time, rows []planner.PlanRow, items []string) error
}

// MetricsRecorder persists dispatch metrics.
type MetricsRecorder interface {
	Record(ctx context.Context, m metrics.DispatchMetric) error
}

// HistoryRecorder persists delivered shopping lists.
type HistoryRecorder interface {
	Save(ctx context.Context, list *shopping.ShoppingList) (int64, error)
	GetByWeek(ctx context.Context, weekStart time.Time) (*shopping.ShoppingList, error)
}

// Authenticator checks the scheduler credential.
type Authenticator interface {
	Authenticate(header string) bool
}

// App holds the application's dependencies.
type App struct {
	docs     DocumentStore
	mailer   Mailer
	auth     Authenticator
	loc      *time.Location
	notifier PlanNotifier
	metrics  MetricsRecorder
	history  HistoryRecorder
	now      func() time.Time
}

// NewApp creates and initializes a new App instance. Week boundaries
// are computed in loc.
func NewApp(docs DocumentStore, m Mailer, auth Authenticator, loc *time.Location) *App {
	if loc == nil {
		loc = time.UTC
	}
	return &App{
		docs:   docs,
		mailer: m,
		auth:   auth,
		loc:    loc,
		now:    time.Now,
	}
}

// WithNotifier enables the secondary delivery channel.
func (a *App) WithNotifier(n PlanNotifier) *App {
	a.notifier = n
	return a
}

// WithMetrics enables dispatch metrics.
func (a *App) WithMetrics(m MetricsRecorder) *App {
	a.metrics = m
	return a
}

// WithHistory enables the delivered shopping list history.
func (a *App) WithHistory(h HistoryRecorder) *App {
	a.history = h
	return a
}

// ShoppingList derives the current week's shopping list.
func (a *App) ShoppingList(ctx context.Context) []string {
	doc := a.docs.Load(ctx)
	return shopping.Derive(doc.Menus, doc.CurrentWeek())
}
