package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarryflow/internal/core/apperror"
	"quarryflow/internal/core/id"
	"quarryflow/internal/core/types"
	"quarryflow/internal/domain/production"
	"quarryflow/internal/domain/reconciliation"
)

type fakeEntryRepo struct {
	records map[production.Stage][]production.Record
}

func (f *fakeEntryRepo) FindApproved(_ context.Context, stage production.Stage, date time.Time, shift *production.Shift) ([]production.Record, error) {
	var out []production.Record
	for _, r := range f.records[stage] {
		if !r.Date.Equal(date) {
			continue
		}
		if shift != nil && r.Shift != *shift {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEntryRepo) FindApprovedRange(_ context.Context, stage production.Stage, from, to time.Time) ([]production.Record, error) {
	var out []production.Record
	for _, r := range f.records[stage] {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeEntryRepo) FindApprovedOutput(_ context.Context, date time.Time, productTypeID, stockpileLocationID id.ID) ([]production.Record, error) {
	return nil, nil
}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func record(stage production.Stage, date time.Time, shift production.Shift, tonnage string) production.Record {
	return production.Record{
		ID:             id.New(),
		Stage:          stage,
		Date:           date,
		Shift:          shift,
		ApprovalStatus: production.StatusApproved,
		Tonnage:        types.MustTonnage(tonnage),
	}
}

func newTestService(repo production.Repository) (*Service, *reconciliation.Service) {
	recon := reconciliation.NewService(repo)
	return NewService(recon), recon
}

func TestGetKPIs(t *testing.T) {
	d := day("2026-08-20")
	repo := &fakeEntryRepo{records: map[production.Stage][]production.Record{
		production.StageExtraction:    {record(production.StageExtraction, d, production.ShiftDay, "1000")},
		production.StageHaulage:       {record(production.StageHaulage, d, production.ShiftDay, "940")},
		production.StageCrusherFeed:   {record(production.StageCrusherFeed, d, production.ShiftDay, "960")},
		production.StageCrusherOutput: {record(production.StageCrusherOutput, d, production.ShiftDay, "912")},
	}}
	svc, _ := newTestService(repo)

	kpis, err := svc.GetKPIs(context.Background(), d, d)
	require.NoError(t, err)
	require.Len(t, kpis, 6)

	byName := make(map[string]KPI, len(kpis))
	for _, k := range kpis {
		byName[k.Name] = k
	}

	assert.True(t, byName["Total Extracted"].Value.Equal(types.MustTonnage("1000")))
	assert.True(t, byName["Total Crusher Output"].Value.Equal(types.MustTonnage("912")))

	// 912/960 and 912/1000.
	yield := byName["Crusher Yield"]
	assert.True(t, yield.Value.Equal(types.MustTonnage("95")), "yield = %s", yield.Value)
	assert.True(t, yield.Percentage)
	require.NotNil(t, yield.Target)

	recovery := byName["Overall Recovery"]
	assert.True(t, recovery.Value.Equal(types.MustTonnage("91.2")), "recovery = %s", recovery.Value)
}

func TestGetKPIs_EmptyRange(t *testing.T) {
	svc, _ := newTestService(&fakeEntryRepo{records: map[production.Stage][]production.Record{}})

	kpis, err := svc.GetKPIs(context.Background(), day("2026-08-18"), day("2026-08-20"))
	require.NoError(t, err)

	// Zero feed and zero extraction must yield zero ratios, not errors.
	for _, k := range kpis {
		assert.True(t, k.Value.IsZero(), "%s = %s", k.Name, k.Value)
	}
}

func TestGetKPIs_InvertedRange(t *testing.T) {
	svc, _ := newTestService(&fakeEntryRepo{})

	_, err := svc.GetKPIs(context.Background(), day("2026-08-20"), day("2026-08-18"))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}

func TestGetDailySummary_TotalsMatchUnshiftedAnalysis(t *testing.T) {
	d := day("2026-08-20")
	repo := &fakeEntryRepo{records: map[production.Stage][]production.Record{
		production.StageExtraction: {
			record(production.StageExtraction, d, production.ShiftDay, "612.5"),
			record(production.StageExtraction, d, production.ShiftNight, "387.5"),
		},
		production.StageHaulage: {
			record(production.StageHaulage, d, production.ShiftDay, "540"),
			record(production.StageHaulage, d, production.ShiftNight, "400"),
		},
		production.StageCrusherFeed: {
			record(production.StageCrusherFeed, d, production.ShiftDay, "530"),
			record(production.StageCrusherFeed, d, production.ShiftNight, "410"),
		},
		production.StageCrusherOutput: {
			record(production.StageCrusherOutput, d, production.ShiftDay, "500"),
			record(production.StageCrusherOutput, d, production.ShiftNight, "390"),
		},
	}}
	svc, recon := newTestService(repo)

	daily, err := svc.GetDailySummary(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, daily.Day)
	require.NotNil(t, daily.Night)

	// The sum of the two shift analyses must equal the unshifted analysis.
	both, err := recon.Analyze(context.Background(), d, nil)
	require.NoError(t, err)

	assert.True(t, daily.Total.ExcavatorTonnage.Equal(both.ExcavatorTonnage))
	assert.True(t, daily.Total.HaulingTonnage.Equal(both.HaulingTonnage))
	assert.True(t, daily.Total.CrusherFeedTonnage.Equal(both.CrusherFeedTonnage))
	assert.True(t, daily.Total.CrusherOutputTonnage.Equal(both.CrusherOutputTonnage))

	assert.True(t, daily.Day.ExcavatorTonnage.Equal(types.MustTonnage("612.5")))
	assert.True(t, daily.Night.ExcavatorTonnage.Equal(types.MustTonnage("387.5")))
}

func TestGetWeeklySummary(t *testing.T) {
	start := day("2026-08-17")
	repo := &fakeEntryRepo{records: map[production.Stage][]production.Record{
		production.StageExtraction: {
			record(production.StageExtraction, start, production.ShiftDay, "100"),
			record(production.StageExtraction, start.AddDate(0, 0, 3), production.ShiftNight, "250"),
		},
	}}
	svc, _ := newTestService(repo)

	days, err := svc.GetWeeklySummary(context.Background(), start)
	require.NoError(t, err)
	require.Len(t, days, 7)

	for i, daily := range days {
		assert.True(t, daily.Date.Equal(start.AddDate(0, 0, i)), "day %d date", i)
	}

	assert.True(t, days[0].Total.ExcavatorTonnage.Equal(types.MustTonnage("100")))
	assert.True(t, days[3].Total.ExcavatorTonnage.Equal(types.MustTonnage("250")))
	assert.True(t, days[6].Total.ExcavatorTonnage.IsZero())
}
