// Package tracing wires OpenTelemetry for the Confluence and HelloMCP servers.
// Tracing is off unless OTEL_ENABLED=true or an OTLP endpoint is configured.
package tracing

import (
	"context"
	"net/url"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for all spans
const TracerName = "confluence-mcp-server"

// Environment variables read by DefaultConfig
const (
	EnvServiceName  = "OTEL_SERVICE_NAME"
	EnvEnabled      = "OTEL_ENABLED"
	EnvEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvEnvironment  = "OTEL_ENVIRONMENT"
	EnvSamplerRatio = "OTEL_TRACES_SAMPLER_ARG"
)

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	OTLPEndpoint   string // host:port or URL; empty means stdout (stderr)
	SampleRate     float64
}

// DefaultConfig builds a Config from the environment for the named service.
// OTEL_SERVICE_NAME overrides serviceName.
func DefaultConfig(serviceName, serviceVersion string) Config {
	endpoint := os.Getenv(EnvEndpoint)

	rate := 1.0
	if v, err := strconv.ParseFloat(os.Getenv(EnvSamplerRatio), 64); err == nil {
		rate = v
	}

	return Config{
		ServiceName:    getEnvOrDefault(EnvServiceName, serviceName),
		ServiceVersion: serviceVersion,
		Environment:    getEnvOrDefault(EnvEnvironment, "development"),
		Enabled:        os.Getenv(EnvEnabled) == "true" || endpoint != "",
		OTLPEndpoint:   endpoint,
		SampleRate:     rate,
	}
}

// Setup installs the global tracer provider and returns its shutdown function.
// When tracing is disabled the shutdown function is a no-op.
func Setup(ctx context.Context, config Config) (func(context.Context) error, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, config.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(Sampler(config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// newExporter picks OTLP/HTTP when an endpoint is set, stdout otherwise.
// stdout carries the stdio transport, so the stdout exporter writes to stderr.
func newExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	if endpoint == "" {
		return stdouttrace.New(
			stdouttrace.WithWriter(os.Stderr),
			stdouttrace.WithPrettyPrint(),
		)
	}

	if u, err := url.Parse(endpoint); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
		if u.Scheme == "http" {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}

	return otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
}

// Sampler maps a ratio to a sampler: >= 1 samples everything, <= 0 nothing
func Sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(ratio)
	}
}

// Tracer returns the server tracer
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span on the server tracer
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// AddToolAttributes tags a tool call span
func AddToolAttributes(span trace.Span, toolName, category string) {
	span.SetAttributes(
		attribute.String("mcp.tool.name", toolName),
		attribute.String("mcp.tool.category", category),
	)
}

// AddResourceAttributes tags a resource read span
func AddResourceAttributes(span trace.Span, uri string) {
	span.SetAttributes(attribute.String("mcp.resource.uri", uri))
}

// AddPromptAttributes tags a prompt span
func AddPromptAttributes(span trace.Span, name string) {
	span.SetAttributes(attribute.String("mcp.prompt.name", name))
}

// AddConfluenceAttributes tags an upstream Confluence request span
func AddConfluenceAttributes(span trace.Span, endpoint, pageID string) {
	span.SetAttributes(attribute.String("confluence.endpoint", endpoint))
	if pageID != "" {
		span.SetAttributes(attribute.String("confluence.page.id", pageID))
	}
}

// RecordError records err on span, if any
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
