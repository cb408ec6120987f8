// Package telemetry wires OpenTelemetry tracing for zabbix-cli. The
// JSON-RPC client records one span per API request on the package
// tracer (plus the HTTP spans from its otelhttp transport); Init
// decides where those spans go: an OTLP collector, stdout, or nowhere.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kidoz/zabbix-cli-go/internal/config"
)

// tracerName identifies the instrumentation scope of the request spans
// emitted by internal/zabbix.
const tracerName = "github.com/kidoz/zabbix-cli-go"

const serviceName = "zabbix-cli"

// attrServerURL tags every span with the Zabbix server the CLI talks
// to, so traces from different servers can be told apart.
const attrServerURL = "zabbix.server.url"

// Init installs the global tracer provider. Disabled telemetry (or
// enabled telemetry with no destination) installs a noop provider so
// the per-request spans in the client cost nothing. The returned
// shutdown function flushes buffered spans and must be called on exit.
func Init(ctx context.Context, cfg *config.Config, appVersion string, verbose bool) (shutdown func(context.Context) error, err error) {
	noopShutdown := func(context.Context) error { return nil }

	if !cfg.Telemetry.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}

	exporter, err := newExporter(ctx, cfg.Telemetry, verbose)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(ctx, cfg, appVersion)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// newExporter picks the span destination: an OTLP endpoint when one is
// configured, stdout in verbose runs, nothing otherwise.
func newExporter(ctx context.Context, cfg config.TelemetryConfig, verbose bool) (sdktrace.SpanExporter, error) {
	switch {
	case cfg.OTLPEndpoint != "":
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter for %s: %w", cfg.OTLPEndpoint, err)
		}
		return exporter, nil
	case verbose:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, nil
	}
}

// newResource describes this process: the service identity plus the
// Zabbix server URL the session is bound to.
func newResource(ctx context.Context, cfg *config.Config, appVersion string) *resource.Resource {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(appVersion),
			attribute.String(attrServerURL, cfg.API.URL),
		),
	)
	if err != nil {
		return resource.Default()
	}
	return res
}

// Tracer returns the tracer the JSON-RPC client records request spans
// on.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
