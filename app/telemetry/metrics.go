package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// MeterProvider owns the process meter provider.
type MeterProvider struct {
	provider *metricsdk.MeterProvider
}

// NewMeterProvider installs a meter provider that exports through the default
// prometheus registry, so the promhttp handler serves ledger metrics next to
// the keeper counters.
func NewMeterProvider() (*MeterProvider, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metricsdk.NewMeterProvider(
		metricsdk.WithResource(res),
		metricsdk.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)
	return &MeterProvider{provider: provider}, nil
}

// Shutdown stops the provider.
func (p *MeterProvider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// ledgerMeters are the instruments the app records into. They come from the
// global meter provider, which is a no-op until NewMeterProvider runs.
type ledgerMeters struct {
	txCounter     metric.Int64Counter
	txDuration    metric.Float64Histogram
	blockHeight   metric.Int64Gauge
	blockDuration metric.Float64Histogram
}

var (
	metersOnce sync.Once
	meters     *ledgerMeters
)

func getMeters() *ledgerMeters {
	metersOnce.Do(func() {
		m, err := newLedgerMeters(otel.Meter(serviceName))
		if err != nil {
			otel.Handle(err)
			return
		}
		meters = m
	})
	return meters
}

func newLedgerMeters(meter metric.Meter) (*ledgerMeters, error) {
	txCounter, err := meter.Int64Counter(
		"leasepay.tx.total",
		metric.WithDescription("Total number of delivered transactions"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, err
	}

	txDuration, err := meter.Float64Histogram(
		"leasepay.tx.processing_time",
		metric.WithDescription("Transaction processing time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	blockHeight, err := meter.Int64Gauge(
		"leasepay.block.height",
		metric.WithDescription("Last committed block height"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, err
	}

	blockDuration, err := meter.Float64Histogram(
		"leasepay.block.settlement_time",
		metric.WithDescription("Time spent settling and committing a block"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &ledgerMeters{
		txCounter:     txCounter,
		txDuration:    txDuration,
		blockHeight:   blockHeight,
		blockDuration: blockDuration,
	}, nil
}

// RecordTransaction records one delivered transaction.
func RecordTransaction(ctx context.Context, duration time.Duration, success bool) {
	m := getMeters()
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failed"
	}
	attrs := metric.WithAttributes(attribute.String("tx.status", status))
	m.txCounter.Add(ctx, 1, attrs)
	m.txDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordBlock records a committed block.
func RecordBlock(ctx context.Context, height int64, duration time.Duration) {
	m := getMeters()
	if m == nil {
		return
	}
	m.blockHeight.Record(ctx, height)
	m.blockDuration.Record(ctx, float64(duration.Microseconds())/1000)
}
