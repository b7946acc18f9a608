package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoiceTransitions metric.Int64Counter
	invoiceConflicts   metric.Int64Counter
	constraintErrors   metric.Int64Counter
	timeseriesWritten  metric.Int64Counter
}

// NewProvider registers the global meter provider. Without OTEL_ENABLED the
// provider is a noop and instruments cost nothing.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", meterName(cfg)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		)),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(func(ctx context.Context) error {
			if log != nil {
				log.Info("flushing meter provider")
			}
			return provider.Shutdown(ctx)
		}))
	}
	if log != nil {
		log.Info("metrics exporter configured",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
			zap.Duration("interval", exportInterval),
		)
	}
	return provider, nil
}

const exportInterval = 10 * time.Second

type counterSpec struct {
	target *metric.Int64Counter
	name   string
	desc   string
	unit   string
}

// New creates the domain instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName(cfg))

	m := &Metrics{}
	specs := []counterSpec{
		{&m.invoiceTransitions, "sitebill_invoice_transitions_total", "Accepted invoice status changes.", "{transition}"},
		{&m.invoiceConflicts, "sitebill_invoice_transition_conflicts_total", "Invoice writes rejected by a stale version.", "{conflict}"},
		{&m.constraintErrors, "sitebill_constraint_violations_total", "Unique and foreign-key failures by entity.", "{violation}"},
		{&m.timeseriesWritten, "sitebill_timeseries_records_written_total", "Persisted time-series rows.", "{record}"},
	}
	for _, spec := range specs {
		counter, err := meter.Int64Counter(spec.name,
			metric.WithDescription(spec.desc),
			metric.WithUnit(spec.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", spec.name, err)
		}
		*spec.target = counter
	}
	return m, nil
}

func meterName(cfg Config) string {
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		return name
	}
	return "sitebill"
}

// RecordInvoiceTransition increments accepted invoice status transitions.
func (m *Metrics) RecordInvoiceTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("from_status", strings.TrimSpace(from)),
		attribute.String("to_status", strings.TrimSpace(to)),
	)
	m.invoiceTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvoiceConflict increments status writes lost to a concurrent update.
func (m *Metrics) RecordInvoiceConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoiceConflicts.Add(ctx, 1)
}

// RecordConstraintViolation increments storage constraint failures per entity.
func (m *Metrics) RecordConstraintViolation(ctx context.Context, entity, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entity", strings.TrimSpace(entity)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.constraintErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTimeseriesWritten adds the number of time-series rows persisted.
func (m *Metrics) RecordTimeseriesWritten(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.timeseriesWritten.Add(ctx, int64(count))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"from_status": {},
	"to_status":   {},
	"entity":      {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
