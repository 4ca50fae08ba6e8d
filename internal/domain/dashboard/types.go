// Package dashboard provides KPI aggregation and daily/weekly rollups over
// the reconciliation engine.
package dashboard

import (
	"time"

	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/reconciliation"
)

// KPI is a derived performance figure. Never persisted.
type KPI struct {
	Name       string         `json:"name"`
	Value      types.Tonnage  `json:"value"`
	Target     *types.Tonnage `json:"target,omitempty"`
	Unit       string         `json:"unit"`
	Percentage bool           `json:"percentage,omitempty"`
}

// ShiftTotals is the pairwise sum of the four stage tonnages across both
// shift summaries of a day.
type ShiftTotals struct {
	ExcavatorTonnage     types.Tonnage `json:"excavatorTonnage"`
	HaulingTonnage       types.Tonnage `json:"haulingTonnage"`
	CrusherFeedTonnage   types.Tonnage `json:"crusherFeedTonnage"`
	CrusherOutputTonnage types.Tonnage `json:"crusherOutputTonnage"`
}

// DailySummary holds the two independent shift reconciliations of one day
// plus their summed tonnages.
type DailySummary struct {
	Date  time.Time               `json:"date"`
	Day   *reconciliation.Summary `json:"day"`
	Night *reconciliation.Summary `json:"night"`
	Total ShiftTotals             `json:"total"`
}
