package dashboard

import (
	"context"
	"fmt"
	"time"

	"quarryflow/internal/core/apperror"
	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/production"
	"quarryflow/internal/domain/reconciliation"
)

// KPI targets: the crusher is expected to return 95% of its feed as
// finished product, and the whole pipeline 90% of the extracted mass.
var (
	targetCrusherYield    = types.MustTonnage("95")
	targetOverallRecovery = types.MustTonnage("90")
)

// Service derives KPIs and time rollups. Stateless: every call re-reads
// the approved-entry set through the reconciliation engine.
type Service struct {
	recon *reconciliation.Service
}

// NewService creates a new dashboard service.
func NewService(recon *reconciliation.Service) *Service {
	return &Service{recon: recon}
}

// GetKPIs sums the four stage tonnages over the inclusive date range and
// derives the yield and recovery ratios. Zero denominators yield zero, not
// an error.
func (s *Service) GetKPIs(ctx context.Context, from, to time.Time) ([]KPI, error) {
	from = reconciliation.NormalizeDate(from)
	to = reconciliation.NormalizeDate(to)
	if from.After(to) {
		return nil, apperror.NewInvalidInput("fromDate must not be after toDate").
			WithDetail("fromDate", from.Format("2006-01-02")).
			WithDetail("toDate", to.Format("2006-01-02"))
	}

	totals, err := s.recon.SumStagesRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum stages: %w", err)
	}

	crusherYield := types.RatioPercent(totals.CrusherOutput, totals.CrusherFeed)
	overallRecovery := types.RatioPercent(totals.CrusherOutput, totals.Excavator)

	yieldTarget := targetCrusherYield
	recoveryTarget := targetOverallRecovery

	return []KPI{
		{Name: "Total Extracted", Value: totals.Excavator, Unit: "t"},
		{Name: "Total Hauled", Value: totals.Hauling, Unit: "t"},
		{Name: "Total Crusher Feed", Value: totals.CrusherFeed, Unit: "t"},
		{Name: "Total Crusher Output", Value: totals.CrusherOutput, Unit: "t"},
		{Name: "Crusher Yield", Value: crusherYield, Target: &yieldTarget, Unit: "%", Percentage: true},
		{Name: "Overall Recovery", Value: overallRecovery, Target: &recoveryTarget, Unit: "%", Percentage: true},
	}, nil
}

// GetDailySummary reconciles the day and night shifts independently and
// sums their tonnages. The total is built from the two shift results, never
// from an unshifted re-query; both must agree and the equivalence is
// covered by tests.
func (s *Service) GetDailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	day := reconciliation.NormalizeDate(date)

	dayShift := production.ShiftDay
	nightShift := production.ShiftNight

	daySummary, err := s.recon.Analyze(ctx, day, &dayShift)
	if err != nil {
		return nil, fmt.Errorf("day shift: %w", err)
	}

	nightSummary, err := s.recon.Analyze(ctx, day, &nightShift)
	if err != nil {
		return nil, fmt.Errorf("night shift: %w", err)
	}

	return &DailySummary{
		Date:  day,
		Day:   daySummary,
		Night: nightSummary,
		Total: ShiftTotals{
			ExcavatorTonnage:     daySummary.ExcavatorTonnage.Add(nightSummary.ExcavatorTonnage),
			HaulingTonnage:       daySummary.HaulingTonnage.Add(nightSummary.HaulingTonnage),
			CrusherFeedTonnage:   daySummary.CrusherFeedTonnage.Add(nightSummary.CrusherFeedTonnage),
			CrusherOutputTonnage: daySummary.CrusherOutputTonnage.Add(nightSummary.CrusherOutputTonnage),
		},
	}, nil
}

// GetWeeklySummary rolls up seven consecutive days starting at startDate.
// Days are fetched sequentially; each day is fully independent, so no
// cross-day memoization exists or is needed.
func (s *Service) GetWeeklySummary(ctx context.Context, startDate time.Time) ([]DailySummary, error) {
	start := reconciliation.NormalizeDate(startDate)

	summaries := make([]DailySummary, 0, 7)
	for i := 0; i < 7; i++ {
		daily, err := s.GetDailySummary(ctx, start.AddDate(0, 0, i))
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i+1, err)
		}
		summaries = append(summaries, *daily)
	}

	return summaries, nil
}
