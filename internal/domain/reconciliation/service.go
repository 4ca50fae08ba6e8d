package reconciliation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/production"
	"quarryflow/pkg/logger"
)

// Service is the reconciliation engine. It aggregates approved production
// records per stage and runs the three pipeline checkpoints.
type Service struct {
	entries production.Repository
}

// NewService creates a new reconciliation service.
func NewService(entries production.Repository) *Service {
	return &Service{entries: entries}
}

// StageTotals holds the four per-stage tonnage sums for a window.
type StageTotals struct {
	Excavator     types.Tonnage
	Hauling       types.Tonnage
	CrusherFeed   types.Tonnage
	CrusherOutput types.Tonnage
}

// Analyze reconciles one calendar day, optionally narrowed to a shift.
// The result is re-derived from current approved records on every call,
// so it always reflects the latest approvals.
func (s *Service) Analyze(ctx context.Context, date time.Time, shift *production.Shift) (*Summary, error) {
	day := NormalizeDate(date)

	totals, err := s.sumStages(ctx, day, shift)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Date:                 day,
		Shift:                shift,
		ExcavatorTonnage:     totals.Excavator,
		HaulingTonnage:       totals.Hauling,
		CrusherFeedTonnage:   totals.CrusherFeed,
		CrusherOutputTonnage: totals.CrusherOutput,
		Variances: [3]Checkpoint{
			Classify(1, checkpointExcavatorHauling, totals.Excavator, totals.Hauling, thresholdExcavatorHauling),
			Classify(2, checkpointHaulingFeed, totals.Hauling, totals.CrusherFeed, thresholdHaulingFeed),
			classifyCrusherLoss(totals.CrusherFeed, totals.CrusherOutput),
		},
	}

	logger.Debug(ctx, "pipeline reconciled",
		"date", day.Format("2006-01-02"),
		"shift", shiftLabel(shift),
		"cp1", summary.Variances[0].Status,
		"cp2", summary.Variances[1].Status,
		"cp3", summary.Variances[2].Status,
	)

	return summary, nil
}

// SumStagesRange aggregates the four stage tonnages over an inclusive day
// range (both shifts). Used by the KPI aggregator.
func (s *Service) SumStagesRange(ctx context.Context, from, to time.Time) (StageTotals, error) {
	from, to = NormalizeDate(from), NormalizeDate(to)

	var totals StageTotals
	g, gCtx := errgroup.WithContext(ctx)
	for i, stage := range production.Stages {
		stage := stage
		dst := totals.field(i)
		g.Go(func() error {
			records, err := s.entries.FindApprovedRange(gCtx, stage, from, to)
			if err != nil {
				return fmt.Errorf("%s: %w", stage, err)
			}
			*dst = types.SumTonnages(production.Tonnages(records))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StageTotals{}, err
	}
	return totals, nil
}

// sumStages fetches the four stage sums for one day. The reads are mutually
// independent, so they fan out as exactly four concurrent tasks and fan in
// before any checkpoint runs. Any failed read fails the whole call; there
// are no partial summaries.
func (s *Service) sumStages(ctx context.Context, day time.Time, shift *production.Shift) (StageTotals, error) {
	var totals StageTotals
	g, gCtx := errgroup.WithContext(ctx)
	for i, stage := range production.Stages {
		stage := stage
		dst := totals.field(i)
		g.Go(func() error {
			records, err := s.entries.FindApproved(gCtx, stage, day, shift)
			if err != nil {
				return fmt.Errorf("%s: %w", stage, err)
			}
			*dst = types.SumTonnages(production.Tonnages(records))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StageTotals{}, err
	}
	return totals, nil
}

// field maps a stage index (flow order) to its destination sum.
func (t *StageTotals) field(i int) *types.Tonnage {
	switch i {
	case 0:
		return &t.Excavator
	case 1:
		return &t.Hauling
	case 2:
		return &t.CrusherFeed
	default:
		return &t.CrusherOutput
	}
}

// NormalizeDate truncates a timestamp to midnight UTC. The stage boundary
// is the calendar day.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func shiftLabel(shift *production.Shift) string {
	if shift == nil {
		return "both"
	}
	return string(*shift)
}
