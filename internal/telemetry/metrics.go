package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/emotionlab/server/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	generationScope      = "emotionlab.generation"
	generationRequests   = "generation.requests"
	generationDuration   = "generation.duration"
	metricExportInterval = 10 * time.Second
)

// durationBuckets bracket the per-kind generation deadlines, 5s praise up to 15s analysis.
var durationBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 7500, 10000, 15000, 20000}

type generationInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

var (
	meterProvider *sdkmetric.MeterProvider
	generation    atomic.Pointer[generationInstruments]
)

// SetupMetrics exports the generation instruments over OTLP. It returns nil when telemetry
// is disabled; RecordGeneration is then a no-op.
func SetupMetrics(cfg *config.Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.Telemetry.Enabled || cfg.Telemetry.OtlpEndpoint == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(Endpoint(cfg.Telemetry.OtlpEndpoint)),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}
	return installMeterProvider(cfg, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricExportInterval)))
}

// installMeterProvider builds the global meter provider around reader and registers the
// generation instruments on it.
func installMeterProvider(cfg *config.Config, reader sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: generationDuration},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: durationBuckets}},
		)),
	)

	inst, err := newGenerationInstruments(mp.Meter(generationScope))
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, fmt.Errorf("register generation instruments: %w", err)
	}

	generation.Store(inst)
	meterProvider = mp
	otel.SetMeterProvider(mp)
	return mp, nil
}

func newGenerationInstruments(meter metric.Meter) (*generationInstruments, error) {
	requests, err := meter.Int64Counter(
		generationRequests,
		metric.WithDescription("Number of generation stage runs"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		generationDuration,
		metric.WithDescription("Duration of generation stage runs, fallback included"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &generationInstruments{requests: requests, duration: duration}, nil
}

// RecordGeneration records one stage run. reason is empty on the happy path and names the
// fallback cause otherwise.
func RecordGeneration(ctx context.Context, kind string, fallbackUsed bool, reason string, durationMs float64) {
	inst := generation.Load()
	if inst == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("fallback_used", strconv.FormatBool(fallbackUsed)),
		attribute.String("reason", reason),
	)
	inst.requests.Add(ctx, 1, attrs)
	inst.duration.Record(ctx, durationMs, attrs)
}

// ShutdownMetrics flushes pending measurements and stops recording.
func ShutdownMetrics(ctx context.Context) error {
	generation.Store(nil)
	if meterProvider == nil {
		return nil
	}
	err := meterProvider.Shutdown(ctx)
	meterProvider = nil
	return err
}
