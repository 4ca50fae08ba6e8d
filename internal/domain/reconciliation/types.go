// Package reconciliation compares aggregated tonnages between consecutive
// pipeline stages and classifies the deviation against stage-specific
// tolerance bands.
package reconciliation

import (
	"time"

	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/production"
)

// CheckpointStatus classifies a variance against its tolerance band.
type CheckpointStatus string

const (
	StatusOK      CheckpointStatus = "OK"
	StatusWarning CheckpointStatus = "WARNING"
	StatusAlert   CheckpointStatus = "ALERT"
)

// Checkpoint is the classified variance at one comparison point.
// Derived on every query, never persisted.
type Checkpoint struct {
	Index            int              `json:"checkpointIndex"`
	Name             string           `json:"name"`
	Expected         types.Tonnage    `json:"expected"`
	Actual           types.Tonnage    `json:"actual"`
	Variance         types.Tonnage    `json:"variance"`
	VariancePercent  types.Tonnage    `json:"variancePercent"`
	ThresholdPercent types.Tonnage    `json:"thresholdPercent"`
	Status           CheckpointStatus `json:"status"`
}

// Summary is the reconciliation result for one date/shift window.
// Pure aggregate over current approved records; never cached.
type Summary struct {
	Date                 time.Time         `json:"date"`
	Shift                *production.Shift `json:"shift,omitempty"`
	ExcavatorTonnage     types.Tonnage     `json:"excavatorTonnage"`
	HaulingTonnage       types.Tonnage     `json:"haulingTonnage"`
	CrusherFeedTonnage   types.Tonnage     `json:"crusherFeedTonnage"`
	CrusherOutputTonnage types.Tonnage     `json:"crusherOutputTonnage"`
	Variances            [3]Checkpoint     `json:"variances"`
}
