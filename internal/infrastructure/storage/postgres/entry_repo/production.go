// Package entry_repo provides the PostgreSQL implementation of the
// production record repository. Read-only: records are written by the
// upstream entry service.
package entry_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quarryflow/internal/core/id"
	"quarryflow/internal/domain/production"
	"quarryflow/internal/infrastructure/storage/postgres"
)

const productionRecordsTable = "production_records"

var productionRecordColumns = []string{
	"id", "stage", "date", "shift", "approval_status", "tonnage",
	"product_type_id", "stockpile_location_id", "created_at", "created_by",
}

// ProductionRepo implements production.Repository.
type ProductionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductionRepo creates a new production record repository.
func NewProductionRepo(txManager *postgres.TxManager) *ProductionRepo {
	return &ProductionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindApproved returns approved records for a stage on a calendar day.
func (r *ProductionRepo) FindApproved(ctx context.Context, stage production.Stage, date time.Time, shift *production.Shift) ([]production.Record, error) {
	q := r.builder.Select(productionRecordColumns...).
		From(productionRecordsTable).
		Where(squirrel.Eq{
			"stage":           stage,
			"date":            date,
			"approval_status": production.StatusApproved,
		})

	if shift != nil {
		q = q.Where(squirrel.Eq{"shift": *shift})
	}

	q = q.OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []production.Record
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}

	return records, nil
}

// FindApprovedRange returns approved records for a stage over an inclusive
// day range, both shifts.
func (r *ProductionRepo) FindApprovedRange(ctx context.Context, stage production.Stage, from, to time.Time) ([]production.Record, error) {
	q := r.builder.Select(productionRecordColumns...).
		From(productionRecordsTable).
		Where(squirrel.Eq{
			"stage":           stage,
			"approval_status": production.StatusApproved,
		}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		OrderBy("date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []production.Record
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}

	return records, nil
}

// FindApprovedOutput returns approved crusher-output records for a day,
// narrowed to a product type and stockpile location.
func (r *ProductionRepo) FindApprovedOutput(ctx context.Context, date time.Time, productTypeID, stockpileLocationID id.ID) ([]production.Record, error) {
	q := r.builder.Select(productionRecordColumns...).
		From(productionRecordsTable).
		Where(squirrel.Eq{
			"stage":                 production.StageCrusherOutput,
			"date":                  date,
			"approval_status":       production.StatusApproved,
			"product_type_id":       productTypeID,
			"stockpile_location_id": stockpileLocationID,
		}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []production.Record
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}

	return records, nil
}

// Ensure interface compliance.
var _ production.Repository = (*ProductionRepo)(nil)
