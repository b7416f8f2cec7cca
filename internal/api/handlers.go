package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"morfi-plan/internal/app"
	"morfi-plan/internal/metrics"
	"morfi-plan/internal/planner"
	"morfi-plan/internal/schedule"
	"morfi-plan/internal/store"
)

const (
	msgInternal      = "Error interno del servidor"
	msgNoAssignments = "No hay asignaciones para enviar"
	msgNoRecipients  = "No hay emails configurados"
	msgBadRequest    = "Solicitud inválida"
	msgMenuNotFound  = "Menú no encontrado"
)

type menuRequest struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Image       *string  `json:"image"`
}

type assignmentRequest struct {
	MenuID     string            `json:"menuId"`
	Day        planner.DayOfWeek `json:"day"`
	MealType   planner.MealType  `json:"mealType"`
	WeekOffset int               `json:"weekOffset"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type sendRequest struct {
	Trigger string `json:"trigger"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *handlers) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.planner.Dashboard(c.Request.Context(), h.now()))
}

func (h *handlers) document(c *gin.Context) {
	c.JSON(http.StatusOK, h.docs.Load(c.Request.Context()))
}

func (h *handlers) shoppingList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.planner.ShoppingList(c.Request.Context())})
}

func (h *handlers) shoppingHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"lists": []any{}})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}
	lists, err := h.history.ListRecent(c.Request.Context(), limit)
	if err != nil {
		slog.Error("failed to list shopping history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (h *handlers) listMenus(c *gin.Context) {
	c.JSON(http.StatusOK, h.docs.Menus(c.Request.Context()))
}

func (h *handlers) createMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}
	menu, err := planner.NewMenu(req.Name, req.Ingredients, req.Image, h.now())
	if err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.docs.AddMenu(c.Request.Context(), menu); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func (h *handlers) updateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}
	ctx := c.Request.Context()

	existing, ok := h.docs.Load(ctx).FindMenu(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgMenuNotFound})
		return
	}
	menu, err := existing.Edit(req.Name, req.Ingredients, req.Image, h.now())
	if err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.docs.UpdateMenu(ctx, menu); err != nil {
		if errors.Is(err, store.ErrMenuNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgMenuNotFound})
			return
		}
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *handlers) deleteMenu(c *gin.Context) {
	c.JSON(http.StatusOK, h.docs.DeleteMenu(c.Request.Context(), c.Param("id")))
}

func (h *handlers) listAssignments(c *gin.Context) {
	doc := h.docs.Load(c.Request.Context())
	raw, ok := c.GetQuery("weekOffset")
	if !ok {
		c.JSON(http.StatusOK, doc.Assignments)
		return
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}
	week := doc.Week(offset)
	if week == nil {
		week = []planner.Assignment{}
	}
	c.JSON(http.StatusOK, week)
}

func (h *handlers) createAssignment(c *gin.Context) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}
	a, err := planner.NewAssignment(req.MenuID, req.Day, req.MealType, req.WeekOffset, h.now())
	if err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.docs.AddAssignment(c.Request.Context(), a); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) deleteAssignment(c *gin.Context) {
	c.JSON(http.StatusOK, h.docs.RemoveAssignment(c.Request.Context(), c.Param("id")))
}

func (h *handlers) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.docs.Settings(c.Request.Context()))
}

func (h *handlers) putConfig(c *gin.Context) {
	var req planner.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}
	saved, err := h.docs.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handlers) addEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}
	saved, err := h.docs.AddRecipient(c.Request.Context(), req.Email)
	if errors.Is(err, planner.ErrDuplicateEmail) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handlers) sendEmail(c *gin.Context) {
	var body sendRequest
	if c.Request.ContentLength != 0 {
		// A malformed body is treated like an empty one.
		_ = c.ShouldBindJSON(&body)
	}

	res, err := h.planner.SendWeeklyPlan(c.Request.Context(), app.SendRequest{
		Authorization: c.GetHeader("Authorization"),
		Trigger:       schedule.ParseTrigger(body.Trigger),
	})

	var dispatchErr *app.DispatchError
	switch {
	case err == nil && res.Skipped:
		c.JSON(http.StatusOK, gin.H{"success": true, "skipped": true, "message": res.Message})
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "recipients": res.Recipients})
	case errors.Is(err, app.ErrNoAssignments):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoAssignments})
	case errors.Is(err, app.ErrNoRecipients):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoRecipients})
	case errors.As(err, &dispatchErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": dispatchErr.Message})
	default:
		slog.Error("send failed", "error", err, "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func (h *handlers) metricsReport(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	usage := []metrics.DailyUsage{}
	if h.usage != nil {
		u, err := h.usage.GetDailyUsage(c.Request.Context(), days)
		if err != nil {
			slog.Error("failed to read usage", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
			return
		}
		if u != nil {
			usage = u
		}
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage, "health": metrics.GetSysHealth(h.dataPath)})
}
