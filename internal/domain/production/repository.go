package production

import (
	"context"
	"time"

	"quarryflow/internal/core/id"
)

// Repository defines read-only access to approved production records.
// Writes happen upstream in the entry-approval workflow.
type Repository interface {
	// FindApproved returns approved records for a stage on a calendar day.
	// A nil shift aggregates both shifts. The date is compared on its
	// calendar day, callers normalize to midnight first.
	FindApproved(ctx context.Context, stage Stage, date time.Time, shift *Shift) ([]Record, error)

	// FindApprovedRange returns approved records for a stage over an
	// inclusive day range (both shifts).
	FindApprovedRange(ctx context.Context, stage Stage, from, to time.Time) ([]Record, error)

	// FindApprovedOutput returns approved crusher-output records for a day,
	// narrowed to a product type and stockpile location. Used by the stock
	// ledger to derive the produced tonnage.
	FindApprovedOutput(ctx context.Context, date time.Time, productTypeID, stockpileLocationID id.ID) ([]Record, error)
}
