package manuscript

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaiso/atlas/internal/domain"
	"github.com/shaiso/atlas/internal/telemetry"
)

const tracerName = "github.com/shaiso/atlas/internal/manuscript"

const attrProjectID = attribute.Key("project.id")

// EventPublisher публикует события синхронизации.
type EventPublisher interface {
	PublishManuscriptSynced(ctx context.Context, event domain.SyncEvent) error
}

// Service синхронизирует манускрипты.
type Service struct {
	store     Store
	publisher EventPublisher
	metrics   *telemetry.SyncMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// Config — зависимости Service.
type Config struct {
	// Store — обязательное хранилище.
	Store Store

	// Publisher — опционально; nil отключает события.
	Publisher EventPublisher

	// Metrics — опционально.
	Metrics *telemetry.SyncMetrics

	// TracerProvider — по умолчанию глобальный otel провайдер.
	TracerProvider trace.TracerProvider

	Logger *slog.Logger
}

// NewService создаёт Service.
func NewService(cfg Config) *Service {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		tracer:    tp.Tracer(tracerName),
		logger:    logger,
		now:       time.Now,
	}
}

// Sync сохраняет манускрипт и публикует событие manuscript.synced.
//
// Ошибка публикации не влияет на результат: запись уже выполнена,
// событие только логируется как потерянное.
func (s *Service) Sync(ctx context.Context, m domain.Manuscript) (domain.SyncResult, error) {
	ctx, span := s.tracer.Start(ctx, "sync_manuscript", trace.WithAttributes(attrProjectID.String(m.ProjectID)))
	defer span.End()

	start := s.now()
	logger := telemetry.WithProjectID(s.logger, m.ProjectID)
	logger.InfoContext(ctx, "syncing manuscript for project")

	err := s.store.Save(ctx, m)
	if s.metrics != nil {
		s.metrics.ObserveSync(err, s.now().Sub(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store")
		return domain.SyncResult{}, fmt.Errorf("save manuscript %s: %w", m.ProjectID, err)
	}

	if s.publisher != nil {
		err := s.publisher.PublishManuscriptSynced(ctx, domain.NewSyncEvent(m, s.now()))
		if s.metrics != nil {
			s.metrics.ObservePublish(err)
		}
		if err != nil {
			logger.WarnContext(ctx, "failed to publish manuscript.synced", "error", err)
		}
	}

	return domain.SyncResult{
		Status:  domain.SyncStatusSynced,
		TraceID: domain.PendingTraceID,
	}, nil
}
