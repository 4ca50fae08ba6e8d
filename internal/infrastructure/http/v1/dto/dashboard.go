package dto

import (
	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/dashboard"
	"quarryflow/internal/domain/reconciliation"
)

// CheckpointResponse is a single reconciliation checkpoint on the wire.
type CheckpointResponse struct {
	Index            int           `json:"index"`
	Name             string        `json:"name"`
	Expected         types.Tonnage `json:"expected"`
	Actual           types.Tonnage `json:"actual"`
	Variance         types.Tonnage `json:"variance"`
	VariancePercent  types.Tonnage `json:"variancePercent"`
	ThresholdPercent types.Tonnage `json:"thresholdPercent"`
	Status           string        `json:"status"`
}

// SummaryResponse is the reconciliation summary for one date (and optionally one shift).
type SummaryResponse struct {
	Date           string               `json:"date"`
	Shift          *string              `json:"shift,omitempty"`
	ExcavatorTotal types.Tonnage        `json:"excavatorTotal"`
	HaulingTotal   types.Tonnage        `json:"haulingTotal"`
	CrusherFeed    types.Tonnage        `json:"crusherFeed"`
	CrusherOutput  types.Tonnage        `json:"crusherOutput"`
	Variances      []CheckpointResponse `json:"variances"`
}

func FromSummary(s *reconciliation.Summary) *SummaryResponse {
	if s == nil {
		return nil
	}
	resp := &SummaryResponse{
		Date:           s.Date.Format(DateFormat),
		ExcavatorTotal: s.ExcavatorTonnage,
		HaulingTotal:   s.HaulingTonnage,
		CrusherFeed:    s.CrusherFeedTonnage,
		CrusherOutput:  s.CrusherOutputTonnage,
		Variances:      make([]CheckpointResponse, 0, len(s.Variances)),
	}
	if s.Shift != nil {
		shift := string(*s.Shift)
		resp.Shift = &shift
	}
	for _, cp := range s.Variances {
		resp.Variances = append(resp.Variances, CheckpointResponse{
			Index:            cp.Index,
			Name:             cp.Name,
			Expected:         cp.Expected,
			Actual:           cp.Actual,
			Variance:         cp.Variance,
			VariancePercent:  cp.VariancePercent,
			ThresholdPercent: cp.ThresholdPercent,
			Status:           string(cp.Status),
		})
	}
	return resp
}

// KPIResponse is one dashboard KPI value.
type KPIResponse struct {
	Name       string         `json:"name"`
	Value      types.Tonnage  `json:"value"`
	Target     *types.Tonnage `json:"target,omitempty"`
	Unit       string         `json:"unit"`
	Percentage bool           `json:"percentage"`
}

func FromKPIs(kpis []dashboard.KPI) []KPIResponse {
	out := make([]KPIResponse, 0, len(kpis))
	for _, k := range kpis {
		out = append(out, KPIResponse{
			Name:       k.Name,
			Value:      k.Value,
			Target:     k.Target,
			Unit:       k.Unit,
			Percentage: k.Percentage,
		})
	}
	return out
}

// ShiftTotalsResponse carries the combined day+night stage totals.
type ShiftTotalsResponse struct {
	ExcavatorTotal types.Tonnage `json:"excavatorTotal"`
	HaulingTotal   types.Tonnage `json:"haulingTotal"`
	CrusherFeed    types.Tonnage `json:"crusherFeed"`
	CrusherOutput  types.Tonnage `json:"crusherOutput"`
}

// DailySummaryResponse breaks one production day down by shift.
type DailySummaryResponse struct {
	Date  string              `json:"date"`
	Day   *SummaryResponse    `json:"day"`
	Night *SummaryResponse    `json:"night"`
	Total ShiftTotalsResponse `json:"total"`
}

func FromDailySummary(d *dashboard.DailySummary) *DailySummaryResponse {
	if d == nil {
		return nil
	}
	return &DailySummaryResponse{
		Date:  d.Date.Format(DateFormat),
		Day:   FromSummary(d.Day),
		Night: FromSummary(d.Night),
		Total: ShiftTotalsResponse{
			ExcavatorTotal: d.Total.ExcavatorTonnage,
			HaulingTotal:   d.Total.HaulingTonnage,
			CrusherFeed:    d.Total.CrusherFeedTonnage,
			CrusherOutput:  d.Total.CrusherOutputTonnage,
		},
	}
}

// WeeklySummaryResponse is seven consecutive daily summaries.
type WeeklySummaryResponse struct {
	StartDate string                 `json:"startDate"`
	Days      []DailySummaryResponse `json:"days"`
}

func FromWeeklySummary(start string, days []dashboard.DailySummary) *WeeklySummaryResponse {
	resp := &WeeklySummaryResponse{
		StartDate: start,
		Days:      make([]DailySummaryResponse, 0, len(days)),
	}
	for i := range days {
		resp.Days = append(resp.Days, *FromDailySummary(&days[i]))
	}
	return resp
}
