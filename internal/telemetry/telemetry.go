// Package telemetry initializes OpenTelemetry exporters and carries the
// profiling run instruments.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown combines multiple shutdown functions.
type Shutdown func(ctx context.Context) error

// Init configures the global OpenTelemetry tracer and meter providers.
// If endpoint is empty, OTEL is disabled and no-op providers are used.
// Returns a shutdown function that must be called before exit so the final
// metric flush of a short-lived profiling run is not lost.
func Init(ctx context.Context, endpoint, serviceName, version string, insecure bool) (Shutdown, error) {
	if endpoint == "" {
		return func(ctx context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	traceOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
	}
	if insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
	}
	traceExp, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	metricOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(endpoint),
	}
	if insecure {
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}
	metricExp, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExp,
				sdkmetric.WithInterval(15*time.Second),
			),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		var firstErr error
		if err := tp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := mp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}

	return shutdown, nil
}

// RunMetrics carries the instruments recorded over a profiling run.
type RunMetrics struct {
	Records   metric.Int64Counter
	Malformed metric.Int64Counter
	Fields    metric.Int64Gauge
	Duration  metric.Float64Histogram
}

// NewRunMetrics registers the profiling run instruments on the global meter
// provider. Safe to call with the no-op provider installed.
func NewRunMetrics() (*RunMetrics, error) {
	meter := otel.GetMeterProvider().Meter("fieldscope")

	records, err := meter.Int64Counter("fieldscope.records.ingested",
		metric.WithDescription("Records ingested across all profiling runs"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create records counter: %w", err)
	}
	malformed, err := meter.Int64Counter("fieldscope.records.malformed",
		metric.WithDescription("Records skipped as malformed"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create malformed counter: %w", err)
	}
	fields, err := meter.Int64Gauge("fieldscope.fields.discovered",
		metric.WithDescription("Unique paths discovered by the latest run"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create fields gauge: %w", err)
	}
	duration, err := meter.Float64Histogram("fieldscope.run.duration",
		metric.WithDescription("Profiling run duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create duration histogram: %w", err)
	}

	return &RunMetrics{
		Records:   records,
		Malformed: malformed,
		Fields:    fields,
		Duration:  duration,
	}, nil
}
