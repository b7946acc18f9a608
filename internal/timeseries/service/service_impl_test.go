package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/sitebill/internal/config"
	"github.com/smallbiznis/sitebill/internal/dbtest"
	timeseriesdomain "github.com/smallbiznis/sitebill/internal/timeseries/domain"
	"github.com/smallbiznis/sitebill/internal/timeseries/repository"
	"github.com/smallbiznis/sitebill/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTimeseriesService(t *testing.T) (timeseriesdomain.Service, *gorm.DB) {
	t.Helper()

	conn := dbtest.Open(t)
	require.NoError(t, conn.Exec(`INSERT INTO sites (name, capacity, techno) VALUES ('Site A', 120, 'solar_field_canopy')`).Error)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Units: config.NewStaticUnitsConfigHolder(config.UnitsConfig{AmountUnit: "EUR", ProductionUnit: "MWh", CashflowUnit: "USD"}),
	})
	return svc, conn
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func countRecords(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&timeseriesdomain.TSRecord{}).Count(&n).Error)
	return n
}

func TestRecordAppliesDefaultUnits(t *testing.T) {
	svc, _ := setupTimeseriesService(t)
	ctx := context.Background()

	records, err := svc.Record(ctx, timeseriesdomain.RecordRequest{
		SiteID: 1,
		Samples: []timeseriesdomain.Sample{
			{Timestamp: day(1), Production: 410.5, Cashflow: 32.8},
			{Timestamp: day(2), Production: 398, UnitProduction: "kWh", Cashflow: 31.1, UnitCashflow: "EUR"},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, err := svc.Get(ctx, 1, day(1))
	require.NoError(t, err)
	assert.Equal(t, 410.5, first.Production)
	assert.Equal(t, "MWh", first.UnitProduction)
	assert.Equal(t, "USD", first.UnitCashflow)

	second, err := svc.Get(ctx, 1, day(2))
	require.NoError(t, err)
	assert.Equal(t, "kWh", second.UnitProduction)
	assert.Equal(t, "EUR", second.UnitCashflow)
}

func TestRecordNormalizesToUTC(t *testing.T) {
	svc, _ := setupTimeseriesService(t)
	ctx := context.Background()

	paris := time.FixedZone("CET", 3600)
	_, err := svc.Record(ctx, timeseriesdomain.RecordRequest{
		SiteID:  1,
		Samples: []timeseriesdomain.Sample{{Timestamp: time.Date(2024, 3, 1, 1, 0, 0, 0, paris), Production: 1}},
	})
	require.NoError(t, err)

	record, err := svc.Get(ctx, 1, day(1))
	require.NoError(t, err)
	assert.True(t, record.Timestamp.Equal(day(1)))
}

func TestTimestampsKeepMicrosecondPrecision(t *testing.T) {
	svc, conn := setupTimeseriesService(t)
	ctx := context.Background()

	ts := day(1).Add(250 * time.Microsecond)
	records, err := svc.Record(ctx, timeseriesdomain.RecordRequest{
		SiteID:  1,
		Samples: []timeseriesdomain.Sample{{Timestamp: ts.Add(999 * time.Nanosecond), Production: 1}},
	})
	require.NoError(t, err)
	assert.True(t, records[0].Timestamp.Equal(ts))

	record, err := svc.Get(ctx, 1, ts.Add(123*time.Nanosecond))
	require.NoError(t, err)
	assert.True(t, record.Timestamp.Equal(ts))

	_, err = svc.Record(ctx, timeseriesdomain.RecordRequest{SiteID: 1, Samples: []timeseriesdomain.Sample{
		{Timestamp: day(2), Production: 2},
		{Timestamp: day(2).Add(400 * time.Nanosecond), Production: 3},
	}})
	assert.True(t, errors.Is(err, timeseriesdomain.ErrDuplicateSample), "got %v", err)
	assert.Equal(t, int64(1), countRecords(t, conn))

	list, err := svc.ListBySite(ctx, timeseriesdomain.ListRequest{SiteID: 1, From: ts.Add(500 * time.Nanosecond), To: day(2)})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordDuplicateKey(t *testing.T) {
	svc, conn := setupTimeseriesService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, timeseriesdomain.RecordRequest{SiteID: 1, Samples: []timeseriesdomain.Sample{{Timestamp: day(1), Production: 1}}})
	require.NoError(t, err)

	// The batch is rejected as a whole; day 2 is not written either.
	_, err = svc.Record(ctx, timeseriesdomain.RecordRequest{SiteID: 1, Samples: []timeseriesdomain.Sample{
		{Timestamp: day(2), Production: 2},
		{Timestamp: day(1), Production: 3},
	}})
	assert.True(t, errors.Is(err, db.ErrUniqueViolation), "got %v", err)
	assert.Equal(t, int64(1), countRecords(t, conn))

	_, err = svc.Get(ctx, 1, day(2))
	assert.True(t, errors.Is(err, timeseriesdomain.ErrNotFound))

	_, err = svc.Record(ctx, timeseriesdomain.RecordRequest{SiteID: 1, Samples: []timeseriesdomain.Sample{{Timestamp: day(2), Production: 2}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), countRecords(t, conn))
}

func TestRecordValidation(t *testing.T) {
	svc, _ := setupTimeseriesService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  timeseriesdomain.RecordRequest
		want error
	}{
		{"no site", timeseriesdomain.RecordRequest{Samples: []timeseriesdomain.Sample{{Timestamp: day(1)}}}, timeseriesdomain.ErrInvalidSite},
		{"empty batch", timeseriesdomain.RecordRequest{SiteID: 1}, timeseriesdomain.ErrEmptyBatch},
		{"zero timestamp", timeseriesdomain.RecordRequest{SiteID: 1, Samples: []timeseriesdomain.Sample{{}}}, timeseriesdomain.ErrInvalidTimestamp},
		{"same timestamp twice", timeseriesdomain.RecordRequest{SiteID: 1, Samples: []timeseriesdomain.Sample{{Timestamp: day(1)}, {Timestamp: day(1)}}}, timeseriesdomain.ErrDuplicateSample},
		{"unknown site", timeseriesdomain.RecordRequest{SiteID: 42, Samples: []timeseriesdomain.Sample{{Timestamp: day(1)}}}, db.ErrForeignKeyViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestListBySiteRange(t *testing.T) {
	svc, _ := setupTimeseriesService(t)
	ctx := context.Background()

	samples := make([]timeseriesdomain.Sample, 0, 5)
	for d := 5; d >= 1; d-- {
		samples = append(samples, timeseriesdomain.Sample{Timestamp: day(d), Production: float64(d)})
	}
	_, err := svc.Record(ctx, timeseriesdomain.RecordRequest{SiteID: 1, Samples: samples})
	require.NoError(t, err)

	all, err := svc.ListBySite(ctx, timeseriesdomain.ListRequest{SiteID: 1})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].Timestamp.Equal(day(1)))
	assert.True(t, all[4].Timestamp.Equal(day(5)))

	window, err := svc.ListBySite(ctx, timeseriesdomain.ListRequest{SiteID: 1, From: day(2), To: day(4)})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, 2.0, window[0].Production)
	assert.Equal(t, 3.0, window[1].Production)

	limited, err := svc.ListBySite(ctx, timeseriesdomain.ListRequest{SiteID: 1, From: day(3), Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 3.0, limited[0].Production)

	_, err = svc.ListBySite(ctx, timeseriesdomain.ListRequest{SiteID: 1, From: day(4), To: day(4)})
	assert.True(t, errors.Is(err, timeseriesdomain.ErrInvalidRange))
}
