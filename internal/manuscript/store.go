package manuscript

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaiso/atlas/internal/domain"
)

// Store сохраняет манускрипт.
type Store interface {
	Save(ctx context.Context, m domain.Manuscript) error
}

// MockStore имитирует запись в БД фиксированной задержкой.
type MockStore struct {
	delay  time.Duration
	tracer trace.Tracer
	logger *slog.Logger
}

// NewMockStore создаёт MockStore с задержкой delay.
// nil tp — глобальный otel провайдер.
func NewMockStore(delay time.Duration, tp trace.TracerProvider, logger *slog.Logger) *MockStore {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &MockStore{
		delay:  delay,
		tracer: tp.Tracer(tracerName),
		logger: logger,
	}
}

// Save ждёт delay и считает запись выполненной.
// Отмена ctx прерывает ожидание.
func (s *MockStore) Save(ctx context.Context, m domain.Manuscript) error {
	ctx, span := s.tracer.Start(ctx, "mock_db_call", trace.WithAttributes(attrProjectID.String(m.ProjectID)))
	defer span.End()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, "cancelled")
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "database updated", "project_id", m.ProjectID)
	return nil
}
