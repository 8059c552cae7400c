package main

import (
	"context"
	"net/url"
	"strings"

	// Packages
	version "github.com/dragon84867/qwen-code-examples/pkg/version"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
)

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// newTracer returns a tracer exporting spans over OTLP/HTTP to endpoint, or
// a no-op tracer when endpoint is empty. The returned function flushes and
// stops the exporter.
func newTracer(ctx context.Context, endpoint string) (trace.Tracer, func(context.Context) error, error) {
	if endpoint == "" {
		return noop.NewTracerProvider().Tracer(version.Name), func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(tracesURL(endpoint)))
	if err != nil {
		return nil, nil, err
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	return provider.Tracer(version.Name, trace.WithInstrumentationVersion(version.Version())), provider.Shutdown, nil
}

// tracesURL appends the signal path to a base endpoint, as the
// OTEL_EXPORTER_OTLP_ENDPOINT variable is specified
func tracesURL(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || strings.Trim(u.Path, "/") != "" {
		return endpoint
	}
	u.Path = "/v1/traces"
	return u.String()
}
