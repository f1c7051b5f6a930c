// Package otel wires OpenTelemetry tracing for CBTA commands.
package otel

import (
	"context"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	envEnabled     = "CBTA_OTEL_ENABLED"
	envEndpoint    = "CBTA_OTEL_ENDPOINT"
	envSampleRatio = "CBTA_OTEL_SAMPLE_RATIO"
)

type settings struct {
	endpoint string
	ratio    float64
}

// settingsFromEnv returns ok=false when tracing is disabled or no endpoint is
// configured. An unparsable or out-of-range ratio falls back to sampling
// every span.
func settingsFromEnv() (settings, bool) {
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envEnabled)), "false") {
		return settings{}, false
	}
	endpoint := strings.TrimSpace(os.Getenv(envEndpoint))
	if endpoint == "" {
		return settings{}, false
	}
	ratio := 1.0
	if raw := strings.TrimSpace(os.Getenv(envSampleRatio)); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed >= 0 && parsed <= 1 {
			ratio = parsed
		}
	}
	return settings{endpoint: endpoint, ratio: ratio}, true
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when CBTA_OTEL_ENDPOINT is empty or CBTA_OTEL_ENABLED is
// "false", Setup returns a no-op shutdown function and no global provider is
// registered.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	cfg, ok := settingsFromEnv()
	if !ok {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceNamespace("cbta"),
		),
	)
	if err != nil {
		return noop, err
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.ratio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.ratio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns a tracer from the global provider. Before Setup registers a
// provider, spans are recorded by the no-op default.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
