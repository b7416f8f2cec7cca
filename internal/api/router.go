// Package api exposes the planner over a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"morfi-plan/internal/app"
	"morfi-plan/internal/metrics"
	"morfi-plan/internal/planner"
	"morfi-plan/internal/shopping"
)

// Documents is the document store as seen by the handlers.
type Documents interface {
	Load(ctx context.Context) planner.AppData
	Menus(ctx context.Context) []planner.Menu
	AddMenu(ctx context.Context, menu planner.Menu) ([]planner.Menu, error)
	UpdateMenu(ctx context.Context, menu planner.Menu) ([]planner.Menu, error)
	DeleteMenu(ctx context.Context, id string) []planner.Menu
	Assignments(ctx context.Context) []planner.Assignment
	AddAssignment(ctx context.Context, a planner.Assignment) ([]planner.Assignment, error)
	RemoveAssignment(ctx context.Context, id string) []planner.Assignment
	Settings(ctx context.Context) planner.Settings
	UpdateSettings(ctx context.Context, s planner.Settings) (planner.Settings, error)
	AddRecipient(ctx context.Context, addr string) (planner.Settings, error)
}

// Planner runs the use cases.
type Planner interface {
	SendWeeklyPlan(ctx context.Context, req app.SendRequest) (app.SendResult, error)
	Dashboard(ctx context.Context, now time.Time) app.Dashboard
	ShoppingList(ctx context.Context) []string
}

// UsageReader reads dispatch metrics.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// HistoryReader reads delivered shopping lists.
type HistoryReader interface {
	ListRecent(ctx context.Context, limit int) ([]shopping.ShoppingList, error)
}

// Options configures the router. Usage and History may be nil.
type Options struct {
	Docs          Documents
	Planner       Planner
	Usage         UsageReader
	History       HistoryReader
	DataPath      string
	SendPerMinute int
}

type handlers struct {
	docs     Documents
	planner  Planner
	usage    UsageReader
	history  HistoryReader
	dataPath string
	now      func() time.Time
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(opts Options) *gin.Engine {
	h := &handlers{
		docs:     opts.Docs,
		planner:  opts.Planner,
		usage:    opts.Usage,
		history:  opts.History,
		dataPath: opts.DataPath,
		now:      time.Now,
	}

	r := gin.New()
	r.Use(RequestID(), AccessLog(), Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/dashboard", h.dashboard)
	api.GET("/document", h.document)
	api.GET("/shopping-list", h.shoppingList)
	api.GET("/shopping-list/history", h.shoppingHistory)

	api.GET("/menus", h.listMenus)
	api.POST("/menus", h.createMenu)
	api.PUT("/menus/:id", h.updateMenu)
	api.DELETE("/menus/:id", h.deleteMenu)

	api.GET("/assignments", h.listAssignments)
	api.POST("/assignments", h.createAssignment)
	api.DELETE("/assignments/:id", h.deleteAssignment)

	api.GET("/config", h.getConfig)
	api.PUT("/config", h.putConfig)
	api.POST("/config/emails", h.addEmail)

	limiter := NewRateLimiter(opts.SendPerMinute)
	api.POST("/send-email", limiter.Middleware(), h.sendEmail)

	api.GET("/metrics", h.metricsReport)

	return r
}
