package dto

import (
	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/stockledger"
)

// CreateStockLevelRequest creates or updates the ledger row for one
// (date, product, location) key.
type CreateStockLevelRequest struct {
	Date                 string         `json:"date" binding:"required"`
	ProductTypeID        string         `json:"productTypeId" binding:"required"`
	StockpileLocationID  string         `json:"stockpileLocationId" binding:"required"`
	OpeningStockOverride *types.Tonnage `json:"openingStock,omitempty"`
	Sold                 *types.Tonnage `json:"sold,omitempty"`
	Adjustments          *types.Tonnage `json:"adjustments,omitempty"`
	AdjustmentReason     *string        `json:"adjustmentReason,omitempty"`
}

// AdjustStockRequest applies a signed correction to an existing row.
type AdjustStockRequest struct {
	Adjustment types.Tonnage `json:"adjustment" binding:"required"`
	Reason     string        `json:"reason" binding:"required"`
}

// RecalculateStockRequest re-derives produced tonnage for one ledger key.
type RecalculateStockRequest struct {
	Date                string `json:"date" binding:"required"`
	ProductTypeID       string `json:"productTypeId" binding:"required"`
	StockpileLocationID string `json:"stockpileLocationId" binding:"required"`
}

// StockLevelResponse is one ledger row on the wire.
type StockLevelResponse struct {
	ID                    string        `json:"id"`
	Date                  string        `json:"date"`
	ProductTypeID         string        `json:"productTypeId"`
	ProductTypeName       string        `json:"productTypeName,omitempty"`
	StockpileLocationID   string        `json:"stockpileLocationId"`
	StockpileLocationName string        `json:"stockpileLocationName,omitempty"`
	OpeningStock          types.Tonnage `json:"openingStock"`
	Produced              types.Tonnage `json:"produced"`
	Sold                  types.Tonnage `json:"sold"`
	Adjustments           types.Tonnage `json:"adjustments"`
	AdjustmentReason      *string       `json:"adjustmentReason,omitempty"`
	ClosingStock          types.Tonnage `json:"closingStock"`
	Version               int           `json:"version"`
}

func FromStockLevel(level *stockledger.StockLevel) *StockLevelResponse {
	if level == nil {
		return nil
	}
	return &StockLevelResponse{
		ID:                    level.ID.String(),
		Date:                  level.Date.Format(DateFormat),
		ProductTypeID:         level.ProductTypeID.String(),
		ProductTypeName:       level.ProductTypeName,
		StockpileLocationID:   level.StockpileLocationID.String(),
		StockpileLocationName: level.StockpileLocationName,
		OpeningStock:          level.OpeningStock,
		Produced:              level.Produced,
		Sold:                  level.Sold,
		Adjustments:           level.Adjustments,
		AdjustmentReason:      level.AdjustmentReason,
		ClosingStock:          level.ClosingStock,
		Version:               level.Version,
	}
}

// AuditEntryResponse is one recorded ledger change.
type AuditEntryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	UserID    string         `json:"userId,omitempty"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

// StockLevelListResponse wraps a page of ledger rows.
type StockLevelListResponse struct {
	Items []StockLevelResponse `json:"items"`
	Total int                  `json:"total"`
}

func FromStockLevels(levels []stockledger.StockLevel) *StockLevelListResponse {
	resp := &StockLevelListResponse{
		Items: make([]StockLevelResponse, 0, len(levels)),
		Total: len(levels),
	}
	for i := range levels {
		resp.Items = append(resp.Items, *FromStockLevel(&levels[i]))
	}
	return resp
}
