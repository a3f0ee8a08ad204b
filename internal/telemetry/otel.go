// Package telemetry wires OpenTelemetry tracing for the API and worker.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

// Options configures the tracer provider.
type Options struct {
	ServiceName string
	// Endpoint is host:port of an OTLP/HTTP collector, e.g. "localhost:4318".
	Endpoint string
	// Secure switches the exporter to TLS.
	Secure bool
	// SampleRatio is the fraction of new traces recorded; values outside
	// (0, 1) record everything.
	SampleRatio float64
}

// InitTracer initializes the OpenTelemetry tracer provider and installs it
// as the global provider together with W3C trace context propagation.
func InitTracer(ctx context.Context, opts Options) (*sdktrace.TracerProvider, error) {
	exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.Endpoint)}
	if !opts.Secure {
		exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(opts.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// sampler keeps the caller's sampling decision and samples new roots by ratio.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Shutdown gracefully shuts down the tracer provider
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
