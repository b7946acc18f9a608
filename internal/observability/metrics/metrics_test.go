package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("from_status", "draft"),
		attribute.String("site_id", "42"),
		attribute.String("to_status", "computed"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("from_status"), attrs[0].Key)
	assert.Equal(t, attribute.Key("to_status"), attrs[1].Key)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordInvoiceTransition(ctx, "draft", "computed")
		m.RecordInvoiceConflict(ctx)
		m.RecordConstraintViolation(ctx, "site", "unique")
		m.RecordTimeseriesWritten(ctx, 3)
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	m, err := New(Config{ServiceName: "sitebill-test"}, provider)
	require.NoError(t, err)
	require.NotNil(t, m)

	m.RecordInvoiceTransition(context.Background(), "computed", "published")
	m.RecordTimeseriesWritten(context.Background(), 10)
}

func TestNewAcceptsExplicitNoop(t *testing.T) {
	_, err := New(Config{}, noop.NewMeterProvider())
	assert.NoError(t, err)
}

func TestCountersReachReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "sitebill-test"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordInvoiceTransition(ctx, "draft", "computed")
	m.RecordInvoiceTransition(ctx, "draft", "computed")
	m.RecordInvoiceConflict(ctx)
	m.RecordConstraintViolation(ctx, "site", "unique")
	m.RecordTimeseriesWritten(ctx, 5)
	m.RecordTimeseriesWritten(ctx, 0)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "sitebill-test", rm.ScopeMetrics[0].Scope.Name)

	totals := map[string]int64{}
	for _, rec := range rm.ScopeMetrics[0].Metrics {
		sum, ok := rec.Data.(metricdata.Sum[int64])
		require.True(t, ok, rec.Name)
		for _, dp := range sum.DataPoints {
			totals[rec.Name] += dp.Value
		}
	}

	assert.Equal(t, int64(2), totals["sitebill_invoice_transitions_total"])
	assert.Equal(t, int64(1), totals["sitebill_invoice_transition_conflicts_total"])
	assert.Equal(t, int64(1), totals["sitebill_constraint_violations_total"])
	assert.Equal(t, int64(5), totals["sitebill_timeseries_records_written_total"])
}
