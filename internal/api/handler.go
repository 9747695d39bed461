package api

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaiso/atlas/internal/domain"
	"github.com/shaiso/atlas/internal/telemetry"
)

// Syncer синхронизирует манускрипт.
type Syncer interface {
	Sync(ctx context.Context, m domain.Manuscript) (domain.SyncResult, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	syncer         Syncer
	metrics        *telemetry.HTTPMetrics
	gatherer       prometheus.Gatherer
	tracerProvider trace.TracerProvider
	logger         *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Syncer Syncer

	// Metrics и Gatherer опциональны; без Gatherer нет /metrics.
	Metrics  *telemetry.HTTPMetrics
	Gatherer prometheus.Gatherer

	// TracerProvider — по умолчанию глобальный otel провайдер.
	TracerProvider trace.TracerProvider

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		syncer:         cfg.Syncer,
		metrics:        cfg.Metrics,
		gatherer:       cfg.Gatherer,
		tracerProvider: tp,
		logger:         logger,
	}
}
