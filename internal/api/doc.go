// Package api содержит HTTP API сервер atlas-api.
//
// Структура:
//   - handler.go            — Handler с DI (сервис синхронизации, метрики, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (tracing, logging, recovery, metrics)
//   - response.go           — JSON-ответы и обработка ошибок
//   - decode.go             — разбор JSON тела запроса
//   - dto.go                — Data Transfer Objects (request/response)
//   - manuscript_handler.go — обработчик /manuscript/sync
//   - health_handler.go     — обработчик /health
//
// Каждый запрос выполняется внутри серверного спана (otelhttp).
package api
