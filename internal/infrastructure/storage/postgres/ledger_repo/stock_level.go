// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quarryflow/internal/core/apperror"
	"quarryflow/internal/core/id"
	"quarryflow/internal/domain/stockledger"
	"quarryflow/internal/infrastructure/storage/postgres"
)

const (
	stockLevelsTable        = "stock_levels"
	productTypesTable       = "ref_product_types"
	stockpileLocationsTable = "ref_stockpile_locations"
)

// selectColumns joins the reference tables so rows come back with display
// names resolved.
var selectColumns = []string{
	"sl.id", "sl.date", "sl.product_type_id", "sl.stockpile_location_id",
	"sl.opening_stock", "sl.produced", "sl.sold",
	"sl.adjustments", "sl.adjustment_reason", "sl.closing_stock",
	"sl.created_by_id", "sl.created_at", "sl.updated_at", "sl.version",
	"pt.name AS product_type_name",
	"loc.name AS stockpile_location_name",
}

// StockLevelRepo implements stockledger.Repository.
type StockLevelRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockLevelRepo creates a new stock ledger repository.
func NewStockLevelRepo(txManager *postgres.TxManager) *StockLevelRepo {
	return &StockLevelRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockLevelRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(selectColumns...).
		From(stockLevelsTable + " sl").
		Join(productTypesTable + " pt ON pt.id = sl.product_type_id").
		Join(stockpileLocationsTable + " loc ON loc.id = sl.stockpile_location_id")
}

// GetByID retrieves a row by primary key.
func (r *StockLevelRepo) GetByID(ctx context.Context, rowID id.ID) (*stockledger.StockLevel, error) {
	q := r.baseSelect().Where(squirrel.Eq{"sl.id": rowID}).Limit(1)
	return r.getOne(ctx, q, rowID)
}

// GetByIDForUpdate retrieves a row by primary key with a pessimistic lock.
func (r *StockLevelRepo) GetByIDForUpdate(ctx context.Context, rowID id.ID) (*stockledger.StockLevel, error) {
	q := r.baseSelect().Where(squirrel.Eq{"sl.id": rowID}).Suffix("FOR UPDATE OF sl")
	return r.getOne(ctx, q, rowID)
}

// GetByKey retrieves the row for (date, product type, location).
func (r *StockLevelRepo) GetByKey(ctx context.Context, date time.Time, productTypeID, locationID id.ID) (*stockledger.StockLevel, error) {
	q := r.baseSelect().Where(squirrel.Eq{
		"sl.date":                  date,
		"sl.product_type_id":       productTypeID,
		"sl.stockpile_location_id": locationID,
	}).Limit(1)
	return r.getOne(ctx, q, keyString(date, productTypeID, locationID))
}

// GetByKeyForUpdate is GetByKey with a row lock. Serializes concurrent
// writers against the same (date, product, location) key.
func (r *StockLevelRepo) GetByKeyForUpdate(ctx context.Context, date time.Time, productTypeID, locationID id.ID) (*stockledger.StockLevel, error) {
	q := r.baseSelect().Where(squirrel.Eq{
		"sl.date":                  date,
		"sl.product_type_id":       productTypeID,
		"sl.stockpile_location_id": locationID,
	}).Suffix("FOR UPDATE OF sl")
	return r.getOne(ctx, q, keyString(date, productTypeID, locationID))
}

func (r *StockLevelRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*stockledger.StockLevel, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var level stockledger.StockLevel
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &level, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock level", key)
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}

	return &level, nil
}

// Insert creates a new ledger row.
func (r *StockLevelRepo) Insert(ctx context.Context, level *stockledger.StockLevel) error {
	q := r.builder.Insert(stockLevelsTable).
		Columns(
			"id", "date", "product_type_id", "stockpile_location_id",
			"opening_stock", "produced", "sold",
			"adjustments", "adjustment_reason", "closing_stock",
			"created_by_id", "created_at", "updated_at", "version",
		).
		Values(
			level.ID, level.Date, level.ProductTypeID, level.StockpileLocationID,
			level.OpeningStock, level.Produced, level.Sold,
			level.Adjustments, level.AdjustmentReason, level.ClosingStock,
			level.CreatedByID, level.CreatedAt, level.UpdatedAt, level.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock level: %w", err)
	}

	return nil
}

// Update rewrites an existing row with optimistic version check.
func (r *StockLevelRepo) Update(ctx context.Context, level *stockledger.StockLevel) error {
	q := r.builder.Update(stockLevelsTable).
		Set("opening_stock", level.OpeningStock).
		Set("produced", level.Produced).
		Set("sold", level.Sold).
		Set("adjustments", level.Adjustments).
		Set("adjustment_reason", level.AdjustmentReason).
		Set("closing_stock", level.ClosingStock).
		Set("updated_at", level.UpdatedAt).
		Set("version", level.Version+1).
		Where(squirrel.Eq{
			"id":      level.ID,
			"version": level.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("stock level", level.ID)
	}

	level.Version++
	return nil
}

// ListForDate returns all rows of one day, ordered by product type name
// then stockpile location name.
func (r *StockLevelRepo) ListForDate(ctx context.Context, date time.Time, filter stockledger.ListFilter) ([]stockledger.StockLevel, error) {
	q := r.baseSelect().Where(squirrel.Eq{"sl.date": date})
	q = applyFilter(q, filter)
	q = q.OrderBy("pt.name", "loc.name")

	return r.list(ctx, q)
}

// ListRange returns rows over an inclusive date range, newest first.
func (r *StockLevelRepo) ListRange(ctx context.Context, from, to time.Time, filter stockledger.ListFilter) ([]stockledger.StockLevel, error) {
	q := r.baseSelect().
		Where(squirrel.GtOrEq{"sl.date": from}).
		Where(squirrel.LtOrEq{"sl.date": to})
	q = applyFilter(q, filter)
	q = q.OrderBy("sl.date DESC", "pt.name", "loc.name")

	return r.list(ctx, q)
}

func (r *StockLevelRepo) list(ctx context.Context, q squirrel.SelectBuilder) ([]stockledger.StockLevel, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var levels []stockledger.StockLevel
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &levels, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock levels: %w", err)
	}

	return levels, nil
}

func applyFilter(q squirrel.SelectBuilder, filter stockledger.ListFilter) squirrel.SelectBuilder {
	if filter.ProductTypeID != nil {
		q = q.Where(squirrel.Eq{"sl.product_type_id": *filter.ProductTypeID})
	}
	if filter.StockpileLocationID != nil {
		q = q.Where(squirrel.Eq{"sl.stockpile_location_id": *filter.StockpileLocationID})
	}
	return q
}

func keyString(date time.Time, productTypeID, locationID id.ID) string {
	return fmt.Sprintf("%s/%s/%s", date.Format("2006-01-02"), productTypeID, locationID)
}

// Ensure interface compliance.
var _ stockledger.Repository = (*StockLevelRepo)(nil)
