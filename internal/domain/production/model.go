// Package production provides approved production records consumed by the
// reconciliation engine and the stock ledger. Record creation and the
// approval workflow live in the upstream entry service; this engine only
// ever reads records that are already approved.
package production

import (
	"time"

	"quarryflow/internal/core/id"
	"quarryflow/internal/core/types"
)

// Stage identifies where in the extraction→output pipeline a record was taken.
type Stage string

const (
	// StageExtraction - excavator estimated tonnage at the pit face
	StageExtraction Stage = "extraction"
	// StageHaulage - truck loads between pit and crusher
	StageHaulage Stage = "haulage"
	// StageCrusherFeed - weighbridge tonnage entering the crusher
	StageCrusherFeed Stage = "crusher_feed"
	// StageCrusherOutput - finished product leaving the crusher
	StageCrusherOutput Stage = "crusher_output"
)

// Stages lists all pipeline stages in flow order.
var Stages = [4]Stage{StageExtraction, StageHaulage, StageCrusherFeed, StageCrusherOutput}

// IsValid reports whether s is a known pipeline stage.
func (s Stage) IsValid() bool {
	switch s {
	case StageExtraction, StageHaulage, StageCrusherFeed, StageCrusherOutput:
		return true
	}
	return false
}

// Shift is one of the two reporting windows per calendar day.
type Shift string

const (
	ShiftDay   Shift = "DAY"
	ShiftNight Shift = "NIGHT"
)

// ParseShift validates and converts a shift string.
func ParseShift(s string) (Shift, bool) {
	switch Shift(s) {
	case ShiftDay, ShiftNight:
		return Shift(s), true
	}
	return "", false
}

// ApprovalStatus is the lifecycle state of a production record.
// The engine filters on StatusApproved and never moves records between states.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Record is a single approved tonnage measurement. Immutable once approved.
// The four stages share this shape; the Tonnage field carries the
// stage-specific figure (estimated, hauled, weighbridge, or output tonnage).
type Record struct {
	ID             id.ID          `db:"id" json:"id"`
	Stage          Stage          `db:"stage" json:"stage"`
	Date           time.Time      `db:"date" json:"date"`
	Shift          Shift          `db:"shift" json:"shift"`
	ApprovalStatus ApprovalStatus `db:"approval_status" json:"approvalStatus"`
	Tonnage        types.Tonnage  `db:"tonnage" json:"tonnage"`

	// Set on crusher-output records: where the finished material landed.
	// This is the link between the production pipeline and the stock ledger.
	ProductTypeID       *id.ID `db:"product_type_id" json:"productTypeId,omitempty"`
	StockpileLocationID *id.ID `db:"stockpile_location_id" json:"stockpileLocationId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// Tonnages projects records onto their tonnage values, preserving order.
func Tonnages(records []Record) []types.Tonnage {
	values := make([]types.Tonnage, len(records))
	for i, r := range records {
		values[i] = r.Tonnage
	}
	return values
}
