package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quarryflow/internal/core/apperror"
	"quarryflow/internal/domain/dashboard"
	"quarryflow/internal/domain/production"
	"quarryflow/internal/domain/reconciliation"
	"quarryflow/internal/infrastructure/http/v1/dto"
)

// DashboardHandler handles HTTP requests for reconciliation dashboards.
type DashboardHandler struct {
	*BaseHandler
	recon     *reconciliation.Service
	dashboard *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, recon *reconciliation.Service, dash *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: base,
		recon:       recon,
		dashboard:   dash,
	}
}

// GetSummary handles GET /dashboard/summary
// Query: date (default today), shift (optional DAY|NIGHT).
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	date, ok := h.ParseDateQuery(c, "date", time.Now().UTC())
	if !ok {
		return
	}

	var shift *production.Shift
	if shiftStr := c.Query("shift"); shiftStr != "" {
		parsed, ok := production.ParseShift(shiftStr)
		if !ok {
			h.Error(c, apperror.NewValidation("invalid shift, expected DAY or NIGHT"))
			return
		}
		shift = &parsed
	}

	summary, err := h.recon.Analyze(ctx, date, shift)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSummary(summary))
}

// GetKPIs handles GET /dashboard/kpis
// Query: fromDate, toDate (default last 7 days, inclusive).
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	ctx := c.Request.Context()

	now := time.Now().UTC()
	to, ok := h.ParseDateQuery(c, "toDate", now)
	if !ok {
		return
	}
	from, ok := h.ParseDateQuery(c, "fromDate", now.AddDate(0, 0, -6))
	if !ok {
		return
	}

	kpis, err := h.dashboard.GetKPIs(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"kpis": dto.FromKPIs(kpis)})
}

// GetDailySummary handles GET /dashboard/daily
// Query: date (default today).
func (h *DashboardHandler) GetDailySummary(c *gin.Context) {
	ctx := c.Request.Context()

	date, ok := h.ParseDateQuery(c, "date", time.Now().UTC())
	if !ok {
		return
	}

	daily, err := h.dashboard.GetDailySummary(ctx, date)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDailySummary(daily))
}

// GetWeeklySummary handles GET /dashboard/weekly
// Query: startDate (default 6 days ago, so the window ends today).
func (h *DashboardHandler) GetWeeklySummary(c *gin.Context) {
	ctx := c.Request.Context()

	start, ok := h.ParseDateQuery(c, "startDate", time.Now().UTC().AddDate(0, 0, -6))
	if !ok {
		return
	}

	days, err := h.dashboard.GetWeeklySummary(ctx, start)
	if err != nil {
		h.Error(c, err)
		return
	}

	startLabel := reconciliation.NormalizeDate(start).Format(dto.DateFormat)
	c.JSON(http.StatusOK, dto.FromWeeklySummary(startLabel, days))
}
