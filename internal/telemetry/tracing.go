package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/shaiso/atlas/internal/config"
)

// ShutdownFunc сбрасывает накопленные спаны и останавливает pipeline.
type ShutdownFunc func(ctx context.Context) error

// AttrEnv — атрибут окружения в resource.
const AttrEnv = attribute.Key("env")

// SetupTracing устанавливает глобальный TracerProvider с batch-экспортом
// спанов в OTLP коллектор по gRPC.
//
// Propagator (W3C tracecontext + baggage) ставится всегда, даже когда
// экспорт выключен, чтобы входящий контекст не терялся.
func SetupTracing(ctx context.Context, cfg config.Tracing, logger *slog.Logger) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		logger.Info("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := NewTracerProvider(cfg, sdktrace.WithBatcher(exporter,
		sdktrace.WithBatchTimeout(config.DefaultTraceFlushPeriod),
	))

	otel.SetTracerProvider(tp)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("opentelemetry error", "error", err)
	}))

	logger.Info("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", cfg.ServiceName,
		"env", cfg.Environment,
	)

	return tp.Shutdown, nil
}

// NewTracerProvider создаёт TracerProvider с resource сервиса.
// Экспорт задаётся через opts (WithBatcher, WithSpanProcessor).
func NewTracerProvider(cfg config.Tracing, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(Resource(cfg)),
	}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

// Resource описывает сервис: service.name и env.
func Resource(cfg config.Tracing) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		AttrEnv.String(cfg.Environment),
	)
}
