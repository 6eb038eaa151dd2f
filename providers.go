package spanloom

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
)

// Providers holds configured OTEL SDK providers for logs, metrics, and
// traces that a host process can use alongside the engine (they concern the
// process, not the domain spans the engine produces). The engine never
// constructs or reads them itself. See SPEC_FULL.md §13.
//
// Always call [Providers.Shutdown] before application exit to flush pending
// telemetry data.
type Providers struct {
	// Log provides OTEL loggers for the diagnostics bridge.
	Log *log.LoggerProvider

	// Meter provides OTEL meters; not currently read by instrumentation.go
	// (which uses metricz directly), but available to hosts that want the
	// engine's process to export its own OTEL metrics alongside it.
	Meter *metric.MeterProvider

	// Trace provides OTEL tracers; not read by instrumentation.go, whose
	// startRun traces Engine.Run with tracez.
	Trace *trace.TracerProvider
}

// Shutdown gracefully shuts down all providers, flushing any pending telemetry.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error

	if p.Trace != nil {
		if err := p.Trace.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace provider: %w", err))
		}
	}

	if p.Meter != nil {
		if err := p.Meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}

	if p.Log != nil {
		if err := p.Log.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log provider: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	return nil
}

// DefaultProviders creates OTLP gRPC providers with opinionated defaults:
// insecure connection for local development, batch processing for logs and
// traces, a 60s periodic reader for metrics, always-sample traces.
//
// Example:
//
//	providers, err := spanloom.DefaultProviders(ctx, "spanloom-worker", "v1.0.0", "localhost:4317")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer providers.Shutdown(ctx)
//
//	engine.Observe(spanloom.NewOTELDiagnosticsHandler(providers.Log.Logger("spanloom")))
func DefaultProviders(
	ctx context.Context,
	serviceName string,
	serviceVersion string,
	otlpEndpoint string,
) (*Providers, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if serviceVersion == "" {
		return nil, fmt.Errorf("service version is required")
	}
	if otlpEndpoint == "" {
		return nil, fmt.Errorf("OTLP endpoint is required")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(otlpEndpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	logProvider := log.NewLoggerProvider(
		log.WithResource(res),
		log.WithProcessor(log.NewBatchProcessor(logExporter)),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(otlpEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = logProvider.Shutdown(ctx) //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExporter,
			metric.WithInterval(60*time.Second),
		)),
	)

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(otlpEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		_ = logProvider.Shutdown(ctx)   //nolint:errcheck // best effort cleanup
		_ = meterProvider.Shutdown(ctx) //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	traceProvider := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSpanProcessor(trace.NewBatchSpanProcessor(traceExporter)),
		trace.WithSampler(trace.AlwaysSample()),
	)

	return &Providers{
		Log:   logProvider,
		Meter: meterProvider,
		Trace: traceProvider,
	}, nil
}
