package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quarryflow/internal/domain/stockledger"
	"quarryflow/internal/infrastructure/http/v1/dto"
	"quarryflow/internal/infrastructure/storage/postgres"
)

// StockHandler handles HTTP requests for the stock ledger.
type StockHandler struct {
	*BaseHandler
	service *stockledger.Service
	audit   *postgres.AuditService
}

// NewStockHandler creates a new stock ledger handler.
func NewStockHandler(base *BaseHandler, service *stockledger.Service, audit *postgres.AuditService) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// GetCurrent handles GET /stock-levels/current
// Query: productTypeId, stockpileLocationId (both optional).
func (h *StockHandler) GetCurrent(c *gin.Context) {
	ctx := c.Request.Context()

	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	levels, err := h.service.GetCurrentStock(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockLevels(levels))
}

// List handles GET /stock-levels
// Query: fromDate, toDate (default last 7 days), productTypeId, stockpileLocationId.
func (h *StockHandler) List(c *gin.Context) {
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
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	levels, err := h.service.GetStockLevels(ctx, from, to, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockLevels(levels))
}

// CreateOrUpdate handles POST /stock-levels
func (h *StockHandler) CreateOrUpdate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateStockLevelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, ok := h.ParseDate(c, "date", req.Date)
	if !ok {
		return
	}
	productTypeID, ok := h.ParseID(c, "productTypeId", req.ProductTypeID)
	if !ok {
		return
	}
	locationID, ok := h.ParseID(c, "stockpileLocationId", req.StockpileLocationID)
	if !ok {
		return
	}

	level, err := h.service.CreateOrUpdate(ctx, stockledger.CreateOrUpdateInput{
		Date:                 date,
		ProductTypeID:        productTypeID,
		StockpileLocationID:  locationID,
		OpeningStockOverride: req.OpeningStockOverride,
		Sold:                 req.Sold,
		Adjustments:          req.Adjustments,
		AdjustmentReason:     req.AdjustmentReason,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	status := http.StatusOK
	if level.Version == 1 {
		status = http.StatusCreated
	}
	c.JSON(status, dto.FromStockLevel(level))
}

// Adjust handles POST /stock-levels/:id/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	ctx := c.Request.Context()

	rowID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	level, err := h.service.AdjustStock(ctx, rowID, req.Adjustment, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockLevel(level))
}

// Recalculate handles POST /stock-levels/recalculate
func (h *StockHandler) Recalculate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecalculateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, ok := h.ParseDate(c, "date", req.Date)
	if !ok {
		return
	}
	productTypeID, ok := h.ParseID(c, "productTypeId", req.ProductTypeID)
	if !ok {
		return
	}
	locationID, ok := h.ParseID(c, "stockpileLocationId", req.StockpileLocationID)
	if !ok {
		return
	}

	level, err := h.service.RecalculateStock(ctx, date, productTypeID, locationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockLevel(level))
}

// History handles GET /stock-levels/:id/history
// Query: limit (default 50).
func (h *StockHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	rowID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.audit.GetEntityHistory(ctx, "StockLevel", rowID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := dto.AuditEntryResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			UserID:    e.UserID,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if len(e.Changes) > 0 {
			// Malformed stored payloads surface as empty changes, not a 500.
			_ = json.Unmarshal(e.Changes, &resp.Changes)
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

func (h *StockHandler) parseFilter(c *gin.Context) (stockledger.ListFilter, bool) {
	var filter stockledger.ListFilter

	productTypeID, ok := h.ParseIDQuery(c, "productTypeId")
	if !ok {
		return filter, false
	}
	locationID, ok := h.ParseIDQuery(c, "stockpileLocationId")
	if !ok {
		return filter, false
	}

	filter.ProductTypeID = productTypeID
	filter.StockpileLocationID = locationID
	return filter, true
}
