// Package tracing configures the OpenTelemetry tracer provider used by the
// HTTP server, the services and the MongoDB store.
package tracing

import (
	"context"
	"fmt"
	"time"

	"repair-desk/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// Shutdown flushes pending spans and stops the provider
type Shutdown func(ctx context.Context) error

// Init installs a global tracer provider. Spans are exported over OTLP/HTTP
// when cfg.Endpoint is set; otherwise they are sampled and dropped in process
// so trace ids still reach the logs.
func Init(ctx context.Context, cfg config.TracingConfig, logger *zap.Logger) (Shutdown, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.ServiceName),
	)

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.Endpoint != "" {
		logger.Info("Initializing tracer", zap.String("otlp_endpoint", cfg.Endpoint))

		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(cfg.Endpoint),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSpanProcessor(
			sdktrace.NewBatchSpanProcessor(exporter, sdktrace.WithExportTimeout(5*time.Second)),
		))
	} else {
		logger.Info("Tracing exporter disabled, OTEL_EXPORTER_OTLP_ENDPOINT is empty")
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
