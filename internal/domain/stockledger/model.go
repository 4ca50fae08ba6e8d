// Package stockledger maintains the per-day rolling balance of finished
// material for each (product type, stockpile location) pair.
package stockledger

import (
	"strings"
	"time"

	"quarryflow/internal/core/id"
	"quarryflow/internal/core/types"
)

// StockLevel is one ledger row. Unique key: (date, product type, location).
// Invariant for every row, always:
//
//	closingStock = openingStock + produced - sold + adjustments
//
// Rows are never deleted by the engine.
type StockLevel struct {
	ID                  id.ID     `db:"id" json:"id"`
	Date                time.Time `db:"date" json:"date"`
	ProductTypeID       id.ID     `db:"product_type_id" json:"productTypeId"`
	StockpileLocationID id.ID     `db:"stockpile_location_id" json:"stockpileLocationId"`

	OpeningStock     types.Tonnage `db:"opening_stock" json:"openingStock"`
	Produced         types.Tonnage `db:"produced" json:"produced"`
	Sold             types.Tonnage `db:"sold" json:"sold"`
	Adjustments      types.Tonnage `db:"adjustments" json:"adjustments"`
	AdjustmentReason *string       `db:"adjustment_reason" json:"adjustmentReason,omitempty"`
	ClosingStock     types.Tonnage `db:"closing_stock" json:"closingStock"`

	CreatedByID string    `db:"created_by_id" json:"createdById,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	// Display names resolved by the repository join; never written back.
	ProductTypeName       string `db:"product_type_name" json:"productTypeName,omitempty"`
	StockpileLocationName string `db:"stockpile_location_name" json:"stockpileLocationName,omitempty"`
}

// Recalculate recomputes the closing balance from the row's own fields.
func (s *StockLevel) Recalculate() {
	s.ClosingStock = s.OpeningStock.Add(s.Produced).Sub(s.Sold).Add(s.Adjustments)
}

// AppendAdjustment accumulates a manual correction and appends one audit
// line to the reason trail. The trail is append-only, never overwritten.
func (s *StockLevel) AppendAdjustment(delta types.Tonnage, reason string) {
	s.Adjustments = s.Adjustments.Add(delta)

	line := reason + ": " + delta.String()
	if s.AdjustmentReason == nil || strings.TrimSpace(*s.AdjustmentReason) == "" {
		s.AdjustmentReason = &line
	} else {
		joined := *s.AdjustmentReason + "\n" + line
		s.AdjustmentReason = &joined
	}

	s.Recalculate()
}
