package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// instrumentationName names the tracer spans are created with.
const instrumentationName = "github.com/Aleph-Alpha/sqlstd/v1/tracer"

// Tracer wraps an OpenTelemetry TracerProvider. It implements
// database.Observer and records statements and transactions as spans.
//
// The Tracer is safe for concurrent use.
type Tracer struct {
	tracer *trace.TracerProvider
	logger database.Logger
}

// NewClient creates a Tracer and installs its provider and the W3C
// propagators as the OpenTelemetry globals. With cfg.EnableExport spans are
// batched to an OTLP HTTP exporter; failing to create it is fatal.
//
//	tr := tracer.NewClient(tracer.Config{ServiceName: "inventory", AppEnv: "production"}, log)
//	conn, err := database.Connect(ctx, uri, database.WithObserver(tr))
func NewClient(cfg Config, logger database.Logger) *Tracer {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		client := otlptracehttp.NewClient()
		exporter, err := otlptrace.New(context.Background(), client)
		if err != nil {
			if logger != nil {
				logger.Fatal("cannot initiate tracer", err, nil)
			}
			return nil
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	t := NewClientWithOptions(cfg, options...)
	t.logger = logger
	return t
}

// NewClientWithOptions is NewClient with caller-supplied provider
// options, such as a span processor, and no exporter of its own.
func NewClientWithOptions(cfg Config, options ...trace.TracerProviderOption) *Tracer {
	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Tracer{tracer: tp}
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.tracer == nil {
		return nil
	}
	return t.tracer.Shutdown(ctx)
}
