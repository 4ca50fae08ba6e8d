package stockledger

import (
	"context"
	"time"

	"quarryflow/internal/core/id"
)

// Repository defines persistence for stock ledger rows.
// NotFound conditions surface as apperror.CodeNotFound.
type Repository interface {
	// GetByID retrieves a row by its primary key.
	GetByID(ctx context.Context, rowID id.ID) (*StockLevel, error)

	// GetByIDForUpdate retrieves a row with a pessimistic lock.
	// Must be called within a transaction.
	GetByIDForUpdate(ctx context.Context, rowID id.ID) (*StockLevel, error)

	// GetByKey retrieves the row for (date, product type, location).
	GetByKey(ctx context.Context, date time.Time, productTypeID, locationID id.ID) (*StockLevel, error)

	// GetByKeyForUpdate is GetByKey with a row lock, serializing concurrent
	// writers against the same key. Must be called within a transaction.
	GetByKeyForUpdate(ctx context.Context, date time.Time, productTypeID, locationID id.ID) (*StockLevel, error)

	// Insert creates a new ledger row.
	Insert(ctx context.Context, level *StockLevel) error

	// Update rewrites an existing row and bumps its version.
	Update(ctx context.Context, level *StockLevel) error

	// ListForDate returns all rows of one calendar day matching the filter,
	// ordered by product type name then stockpile location name.
	ListForDate(ctx context.Context, date time.Time, filter ListFilter) ([]StockLevel, error)

	// ListRange returns rows over an inclusive date range, newest first.
	ListRange(ctx context.Context, from, to time.Time, filter ListFilter) ([]StockLevel, error)
}

// ListFilter narrows ledger listings.
type ListFilter struct {
	ProductTypeID       *id.ID
	StockpileLocationID *id.ID
}
