// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog (с trace_id/span_id)
//   - tracing.go — OpenTelemetry pipeline с экспортом в OTLP коллектор
//   - metrics.go — Prometheus метрики HTTP и синхронизации
//
// Все сервисы используют единый формат логирования,
// отправляют спаны в коллектор (alloy) и экспортируют метрики на /metrics.
package telemetry
