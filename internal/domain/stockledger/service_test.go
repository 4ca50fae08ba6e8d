package stockledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarryflow/internal/core/apperror"
	"quarryflow/internal/core/id"
	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/production"
)

// passthroughTxManager runs fn directly; the in-memory repo needs no
// transaction semantics.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type ledgerKey struct {
	date                string
	productTypeID       id.ID
	stockpileLocationID id.ID
}

// memoryRepo is an in-memory Repository mirroring the real one's contract:
// NotFound errors on missing rows, version bump on update.
type memoryRepo struct {
	rows map[id.ID]*StockLevel
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[id.ID]*StockLevel)}
}

func (m *memoryRepo) key(level *StockLevel) ledgerKey {
	return ledgerKey{
		date:                level.Date.Format("2006-01-02"),
		productTypeID:       level.ProductTypeID,
		stockpileLocationID: level.StockpileLocationID,
	}
}

func (m *memoryRepo) GetByID(_ context.Context, rowID id.ID) (*StockLevel, error) {
	row, ok := m.rows[rowID]
	if !ok {
		return nil, apperror.NewNotFound("stock level", rowID)
	}
	clone := *row
	return &clone, nil
}

func (m *memoryRepo) GetByIDForUpdate(ctx context.Context, rowID id.ID) (*StockLevel, error) {
	return m.GetByID(ctx, rowID)
}

func (m *memoryRepo) GetByKey(_ context.Context, date time.Time, productTypeID, locationID id.ID) (*StockLevel, error) {
	want := ledgerKey{date.Format("2006-01-02"), productTypeID, locationID}
	for _, row := range m.rows {
		if m.key(row) == want {
			clone := *row
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("stock level", want.date)
}

func (m *memoryRepo) GetByKeyForUpdate(ctx context.Context, date time.Time, productTypeID, locationID id.ID) (*StockLevel, error) {
	return m.GetByKey(ctx, date, productTypeID, locationID)
}

func (m *memoryRepo) Insert(_ context.Context, level *StockLevel) error {
	clone := *level
	m.rows[level.ID] = &clone
	return nil
}

func (m *memoryRepo) Update(_ context.Context, level *StockLevel) error {
	if _, ok := m.rows[level.ID]; !ok {
		return apperror.NewNotFound("stock level", level.ID)
	}
	level.Version++
	clone := *level
	m.rows[level.ID] = &clone
	return nil
}

func (m *memoryRepo) ListForDate(_ context.Context, date time.Time, _ ListFilter) ([]StockLevel, error) {
	var out []StockLevel
	for _, row := range m.rows {
		if row.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListRange(_ context.Context, from, to time.Time, _ ListFilter) ([]StockLevel, error) {
	var out []StockLevel
	for _, row := range m.rows {
		if row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

// recordingAuditor captures audit actions in call order.
type recordingAuditor struct {
	actions []string
	changes []map[string]any
}

func (r *recordingAuditor) LogChange(_ context.Context, _ string, _ id.ID, action string, changes map[string]any) error {
	r.actions = append(r.actions, action)
	r.changes = append(r.changes, changes)
	return nil
}

// fakeEntryRepo serves approved crusher-output records for sumProduced.
type fakeEntryRepo struct {
	output map[string][]production.Record // keyed by date
}

func (f *fakeEntryRepo) FindApproved(_ context.Context, _ production.Stage, _ time.Time, _ *production.Shift) ([]production.Record, error) {
	return nil, nil
}

func (f *fakeEntryRepo) FindApprovedRange(_ context.Context, _ production.Stage, _, _ time.Time) ([]production.Record, error) {
	return nil, nil
}

func (f *fakeEntryRepo) FindApprovedOutput(_ context.Context, date time.Time, productTypeID, locationID id.ID) ([]production.Record, error) {
	var out []production.Record
	for _, r := range f.output[date.Format("2006-01-02")] {
		if r.ProductTypeID == nil || *r.ProductTypeID != productTypeID {
			continue
		}
		if r.StockpileLocationID == nil || *r.StockpileLocationID != locationID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEntryRepo) addOutput(date time.Time, productTypeID, locationID id.ID, tonnage string) {
	key := date.Format("2006-01-02")
	f.output[key] = append(f.output[key], production.Record{
		ID:                  id.New(),
		Stage:               production.StageCrusherOutput,
		Date:                date,
		Shift:               production.ShiftDay,
		ApprovalStatus:      production.StatusApproved,
		Tonnage:             types.MustTonnage(tonnage),
		ProductTypeID:       &productTypeID,
		StockpileLocationID: &locationID,
	})
}

type fixture struct {
	svc     *Service
	repo    *memoryRepo
	entries *fakeEntryRepo
	audit   *recordingAuditor
	product id.ID
	loc     id.ID
}

func newFixture() *fixture {
	repo := newMemoryRepo()
	entries := &fakeEntryRepo{output: make(map[string][]production.Record)}
	audit := &recordingAuditor{}
	return &fixture{
		svc:     NewService(repo, entries, passthroughTxManager{}, audit),
		repo:    repo,
		entries: entries,
		audit:   audit,
		product: id.New(),
		loc:     id.New(),
	}
}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func TestCreateOrUpdate_Create(t *testing.T) {
	f := newFixture()
	d := day("2026-08-20")
	f.entries.addOutput(d, f.product, f.loc, "450")
	f.entries.addOutput(d, f.product, f.loc, "50")

	level, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                d,
		ProductTypeID:       f.product,
		StockpileLocationID: f.loc,
		Sold:                ptr(types.MustTonnage("120")),
	})
	require.NoError(t, err)

	assert.True(t, level.OpeningStock.IsZero())
	assert.True(t, level.Produced.Equal(types.MustTonnage("500")))
	assert.True(t, level.Sold.Equal(types.MustTonnage("120")))
	assert.True(t, level.ClosingStock.Equal(types.MustTonnage("380")))
	assert.Equal(t, 1, level.Version)
	assert.Equal(t, []string{AuditActionCreate}, f.audit.actions)
}

func TestCreateOrUpdate_Update(t *testing.T) {
	f := newFixture()
	d := day("2026-08-20")
	f.entries.addOutput(d, f.product, f.loc, "500")

	input := CreateOrUpdateInput{
		Date:                d,
		ProductTypeID:       f.product,
		StockpileLocationID: f.loc,
	}

	first, err := f.svc.CreateOrUpdate(context.Background(), input)
	require.NoError(t, err)

	input.Sold = ptr(types.MustTonnage("200"))
	second, err := f.svc.CreateOrUpdate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "must update the same row, not insert a second one")
	assert.True(t, second.ClosingStock.Equal(types.MustTonnage("300")))
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, []string{AuditActionCreate, AuditActionUpdate}, f.audit.actions)
}

func TestCreateOrUpdate_OpeningStockChain(t *testing.T) {
	f := newFixture()
	d1 := day("2026-08-20")
	d2 := d1.AddDate(0, 0, 1)
	f.entries.addOutput(d1, f.product, f.loc, "500")
	f.entries.addOutput(d2, f.product, f.loc, "300")

	dayOne, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                d1,
		ProductTypeID:       f.product,
		StockpileLocationID: f.loc,
		Sold:                ptr(types.MustTonnage("150")),
	})
	require.NoError(t, err)
	require.True(t, dayOne.ClosingStock.Equal(types.MustTonnage("350")))

	dayTwo, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                d2,
		ProductTypeID:       f.product,
		StockpileLocationID: f.loc,
	})
	require.NoError(t, err)

	assert.True(t, dayTwo.OpeningStock.Equal(dayOne.ClosingStock),
		"next day opening %s must equal prior day closing %s", dayTwo.OpeningStock, dayOne.ClosingStock)
	assert.True(t, dayTwo.ClosingStock.Equal(types.MustTonnage("650")))
}

func TestCreateOrUpdate_OpeningStockOverride(t *testing.T) {
	f := newFixture()
	d := day("2026-08-20")

	level, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                 d,
		ProductTypeID:        f.product,
		StockpileLocationID:  f.loc,
		OpeningStockOverride: ptr(types.MustTonnage("1000")),
	})
	require.NoError(t, err)

	assert.True(t, level.OpeningStock.Equal(types.MustTonnage("1000")))
	assert.True(t, level.ClosingStock.Equal(types.MustTonnage("1000")))
}

func TestCreateOrUpdate_MissingPriorDayResetsToZero(t *testing.T) {
	f := newFixture()

	level, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                day("2026-08-20"),
		ProductTypeID:       f.product,
		StockpileLocationID: f.loc,
	})
	require.NoError(t, err)

	assert.True(t, level.OpeningStock.IsZero())
}

func TestCreateOrUpdate_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                day("2026-08-20"),
		StockpileLocationID: f.loc,
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}

func TestAdjustStock(t *testing.T) {
	f := newFixture()
	d := day("2026-08-20")

	level, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                 d,
		ProductTypeID:        f.product,
		StockpileLocationID:  f.loc,
		OpeningStockOverride: ptr(types.MustTonnage("100")),
	})
	require.NoError(t, err)

	adjusted, err := f.svc.AdjustStock(context.Background(), level.ID, types.MustTonnage("10"), "survey correction")
	require.NoError(t, err)
	assert.True(t, adjusted.Adjustments.Equal(types.MustTonnage("10")))
	assert.True(t, adjusted.ClosingStock.Equal(types.MustTonnage("110")))

	adjusted, err = f.svc.AdjustStock(context.Background(), level.ID, types.MustTonnage("-3"), "moisture loss")
	require.NoError(t, err)
	assert.True(t, adjusted.Adjustments.Equal(types.MustTonnage("7")))
	assert.True(t, adjusted.ClosingStock.Equal(types.MustTonnage("107")))

	// The reason trail is append-only, one line per adjustment, in order.
	require.NotNil(t, adjusted.AdjustmentReason)
	lines := strings.Split(*adjusted.AdjustmentReason, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "survey correction: 10", lines[0])
	assert.Equal(t, "moisture loss: -3", lines[1])

	assert.Equal(t, []string{AuditActionCreate, AuditActionAdjust, AuditActionAdjust}, f.audit.actions)
}

func TestAdjustStock_RequiresReason(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AdjustStock(context.Background(), id.New(), types.MustTonnage("5"), "")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}

func TestAdjustStock_MissingRow(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AdjustStock(context.Background(), id.New(), types.MustTonnage("5"), "recount")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecalculateStock(t *testing.T) {
	f := newFixture()
	d := day("2026-08-20")
	f.entries.addOutput(d, f.product, f.loc, "400")

	level, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                d,
		ProductTypeID:       f.product,
		StockpileLocationID: f.loc,
	})
	require.NoError(t, err)
	require.True(t, level.Produced.Equal(types.MustTonnage("400")))

	// A late approval lands after the original write.
	f.entries.addOutput(d, f.product, f.loc, "60")

	recalced, err := f.svc.RecalculateStock(context.Background(), d, f.product, f.loc)
	require.NoError(t, err)

	assert.True(t, recalced.Produced.Equal(types.MustTonnage("460")))
	assert.True(t, recalced.ClosingStock.Equal(types.MustTonnage("460")))
	assert.True(t, recalced.OpeningStock.Equal(level.OpeningStock), "opening stock must stay untouched")
}

func TestRecalculateStock_Idempotent(t *testing.T) {
	f := newFixture()
	d := day("2026-08-20")
	f.entries.addOutput(d, f.product, f.loc, "400")

	_, err := f.svc.CreateOrUpdate(context.Background(), CreateOrUpdateInput{
		Date:                d,
		ProductTypeID:       f.product,
		StockpileLocationID: f.loc,
	})
	require.NoError(t, err)

	first, err := f.svc.RecalculateStock(context.Background(), d, f.product, f.loc)
	require.NoError(t, err)

	second, err := f.svc.RecalculateStock(context.Background(), d, f.product, f.loc)
	require.NoError(t, err)

	// No new approvals between the calls: identical output, no extra
	// version bump, no extra audit entry.
	assert.Equal(t, first.Version, second.Version)
	assert.True(t, first.ClosingStock.Equal(second.ClosingStock))
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
	assert.Equal(t, []string{AuditActionCreate}, f.audit.actions)
}

func TestRecalculateStock_MissingRow(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RecalculateStock(context.Background(), day("2026-08-20"), f.product, f.loc)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err), "recalculation must never create a row")
}

func TestGetStockLevels_InvertedRange(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetStockLevels(context.Background(), day("2026-08-20"), day("2026-08-18"), ListFilter{})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}
