package stockledger

import (
	"context"
	"fmt"
	"time"

	"quarryflow/internal/core/apperror"
	"quarryflow/internal/core/appctx"
	"quarryflow/internal/core/id"
	"quarryflow/internal/core/tx"
	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/production"
	"quarryflow/internal/domain/reconciliation"
	"quarryflow/pkg/logger"
)

// Audit actions recorded against ledger rows.
const (
	AuditActionCreate      = "create"
	AuditActionUpdate      = "update"
	AuditActionAdjust      = "adjust"
	AuditActionRecalculate = "recalculate"
)

// Auditor records ledger changes for the audit trail.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service provides business operations for the stock ledger.
// Every write runs in a single transaction: read-prior-day, compute, write
// must be atomic so two writers never both read the same stale closing stock.
type Service struct {
	repo      Repository
	entries   production.Repository
	txManager tx.Manager
	audit     Auditor
}

// NewService creates a new stock ledger service. audit may be nil.
func NewService(repo Repository, entries production.Repository, txManager tx.Manager, audit Auditor) *Service {
	return &Service{
		repo:      repo,
		entries:   entries,
		txManager: txManager,
		audit:     audit,
	}
}

// CreateOrUpdateInput carries the caller-supplied fields for an upsert.
// Nil pointers take their documented defaults.
type CreateOrUpdateInput struct {
	Date                time.Time
	ProductTypeID       id.ID
	StockpileLocationID id.ID

	// OpeningStockOverride replaces the prior-day chain lookup when set.
	OpeningStockOverride *types.Tonnage

	Sold             *types.Tonnage
	Adjustments      *types.Tonnage
	AdjustmentReason *string
}

func (in *CreateOrUpdateInput) validate() error {
	if id.IsNil(in.ProductTypeID) {
		return apperror.NewInvalidInput("productTypeId is required")
	}
	if id.IsNil(in.StockpileLocationID) {
		return apperror.NewInvalidInput("stockpileLocationId is required")
	}
	if in.Date.IsZero() {
		return apperror.NewInvalidInput("date is required")
	}
	return nil
}

// CreateOrUpdate upserts the ledger row for (date, product type, location).
//
// Opening stock resolves to the override if supplied, otherwise to the prior
// calendar day's closing stock, otherwise to zero. A missing prior day
// silently resets the chain to zero; see ledger docs for why this is kept.
// Produced is always re-derived from approved crusher-output records.
func (s *Service) CreateOrUpdate(ctx context.Context, input CreateOrUpdateInput) (*StockLevel, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	day := reconciliation.NormalizeDate(input.Date)

	var result *StockLevel
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByKeyForUpdate(ctx, day, input.ProductTypeID, input.StockpileLocationID)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("get ledger row: %w", err)
		}

		opening, err := s.resolveOpeningStock(ctx, day, input)
		if err != nil {
			return err
		}

		produced, err := s.sumProduced(ctx, day, input.ProductTypeID, input.StockpileLocationID)
		if err != nil {
			return err
		}

		sold := types.Zero()
		if input.Sold != nil {
			sold = *input.Sold
		}
		adjustments := types.Zero()
		if input.Adjustments != nil {
			adjustments = *input.Adjustments
		}

		now := time.Now().UTC()

		if existing == nil {
			level := &StockLevel{
				ID:                  id.New(),
				Date:                day,
				ProductTypeID:       input.ProductTypeID,
				StockpileLocationID: input.StockpileLocationID,
				OpeningStock:        opening,
				Produced:            produced,
				Sold:                sold,
				Adjustments:         adjustments,
				AdjustmentReason:    input.AdjustmentReason,
				CreatedByID:         appctx.GetActorID(ctx),
				CreatedAt:           now,
				UpdatedAt:           now,
				Version:             1,
			}
			level.Recalculate()

			if err := s.repo.Insert(ctx, level); err != nil {
				return fmt.Errorf("insert ledger row: %w", err)
			}
			result = level
			return s.logChange(ctx, level, AuditActionCreate)
		}

		existing.OpeningStock = opening
		existing.Produced = produced
		existing.Sold = sold
		existing.Adjustments = adjustments
		if input.AdjustmentReason != nil {
			existing.AdjustmentReason = input.AdjustmentReason
		}
		existing.UpdatedAt = now
		existing.Recalculate()

		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update ledger row: %w", err)
		}
		result = existing
		return s.logChange(ctx, existing, AuditActionUpdate)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock level saved",
		"date", day.Format("2006-01-02"),
		"product_type_id", input.ProductTypeID,
		"stockpile_location_id", input.StockpileLocationID,
		"closing_stock", result.ClosingStock,
	)

	return result, nil
}

// AdjustStock appends a manual correction to an existing row. The delta is
// accumulated into the adjustments total and one audit line is appended to
// the reason trail. Opening stock and produced are never re-derived here.
func (s *Service) AdjustStock(ctx context.Context, rowID id.ID, delta types.Tonnage, reason string) (*StockLevel, error) {
	if id.IsNil(rowID) {
		return nil, apperror.NewInvalidInput("stock level id is required")
	}
	if reason == "" {
		return nil, apperror.NewInvalidInput("adjustment reason is required")
	}

	var result *StockLevel
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		level, err := s.repo.GetByIDForUpdate(ctx, rowID)
		if err != nil {
			return err
		}

		level.AppendAdjustment(delta, reason)
		level.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, level); err != nil {
			return fmt.Errorf("update ledger row: %w", err)
		}
		result = level
		return s.logChange(ctx, level, AuditActionAdjust, "delta", delta.String(), "reason", reason)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock level adjusted",
		"id", rowID,
		"delta", delta,
		"adjustments", result.Adjustments,
	)

	return result, nil
}

// RecalculateStock re-derives produced from the current approved
// crusher-output records, picking up entries approved after the original
// ledger write. Opening stock, sold and adjustments stay untouched. The row
// must already exist; recalculation never creates one. Calling it twice with
// no new approvals leaves the row byte-identical.
func (s *Service) RecalculateStock(ctx context.Context, date time.Time, productTypeID, locationID id.ID) (*StockLevel, error) {
	if id.IsNil(productTypeID) || id.IsNil(locationID) {
		return nil, apperror.NewInvalidInput("productTypeId and stockpileLocationId are required")
	}
	day := reconciliation.NormalizeDate(date)

	var result *StockLevel
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Recalculation never creates a row: a missing key propagates as NotFound.
		level, err := s.repo.GetByKeyForUpdate(ctx, day, productTypeID, locationID)
		if err != nil {
			return err
		}

		produced, err := s.sumProduced(ctx, day, productTypeID, locationID)
		if err != nil {
			return err
		}

		// No new approvals: leave the row untouched so repeated calls
		// produce identical output.
		if produced.Equal(level.Produced) {
			result = level
			return nil
		}

		level.Produced = produced
		level.UpdatedAt = time.Now().UTC()
		level.Recalculate()

		if err := s.repo.Update(ctx, level); err != nil {
			return fmt.Errorf("update ledger row: %w", err)
		}
		result = level
		return s.logChange(ctx, level, AuditActionRecalculate)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetCurrentStock returns today's snapshot, ordered by product type name
// then stockpile location name.
func (s *Service) GetCurrentStock(ctx context.Context, filter ListFilter) ([]StockLevel, error) {
	today := reconciliation.NormalizeDate(time.Now())
	levels, err := s.repo.ListForDate(ctx, today, filter)
	if err != nil {
		return nil, fmt.Errorf("list current stock: %w", err)
	}
	return levels, nil
}

// GetStockLevels returns ledger history over an inclusive date range.
func (s *Service) GetStockLevels(ctx context.Context, from, to time.Time, filter ListFilter) ([]StockLevel, error) {
	from = reconciliation.NormalizeDate(from)
	to = reconciliation.NormalizeDate(to)
	if from.After(to) {
		return nil, apperror.NewInvalidInput("fromDate must not be after toDate")
	}

	levels, err := s.repo.ListRange(ctx, from, to, filter)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	return levels, nil
}

// resolveOpeningStock picks the override, else the prior calendar day's
// closing stock, else zero.
func (s *Service) resolveOpeningStock(ctx context.Context, day time.Time, input CreateOrUpdateInput) (types.Tonnage, error) {
	if input.OpeningStockOverride != nil {
		return *input.OpeningStockOverride, nil
	}

	prior, err := s.repo.GetByKey(ctx, day.AddDate(0, 0, -1), input.ProductTypeID, input.StockpileLocationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Missing prior day resets the chain to zero. This can mask a
			// data gap as a legitimate zero balance; callers that care
			// should seed the gap day first.
			return types.Zero(), nil
		}
		return types.Tonnage{}, fmt.Errorf("get prior day: %w", err)
	}
	return prior.ClosingStock, nil
}

// sumProduced folds approved crusher-output tonnage for the key.
func (s *Service) sumProduced(ctx context.Context, day time.Time, productTypeID, locationID id.ID) (types.Tonnage, error) {
	records, err := s.entries.FindApprovedOutput(ctx, day, productTypeID, locationID)
	if err != nil {
		return types.Tonnage{}, fmt.Errorf("sum produced: %w", err)
	}
	return types.SumTonnages(production.Tonnages(records)), nil
}

func (s *Service) logChange(ctx context.Context, level *StockLevel, action string, extra ...string) error {
	if s.audit == nil {
		return nil
	}

	changes := map[string]any{
		"date":                  level.Date.Format("2006-01-02"),
		"product_type_id":       level.ProductTypeID.String(),
		"stockpile_location_id": level.StockpileLocationID.String(),
		"opening_stock":         level.OpeningStock.String(),
		"produced":              level.Produced.String(),
		"sold":                  level.Sold.String(),
		"adjustments":           level.Adjustments.String(),
		"closing_stock":         level.ClosingStock.String(),
	}
	for i := 0; i+1 < len(extra); i += 2 {
		changes[extra[i]] = extra[i+1]
	}

	if err := s.audit.LogChange(ctx, "StockLevel", level.ID, action, changes); err != nil {
		return fmt.Errorf("audit ledger change: %w", err)
	}
	return nil
}
