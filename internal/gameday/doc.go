// Package gameday содержит сценарии Game Day для платформы Atlas.
//
// Сценарии:
//   - load-test     — поток запросов POST /manuscript/sync с jitter
//   - health-sweep  — проверка /health и readiness всех сервисов
//   - trace-verify  — запрос с известным project_id и проверка trace backend
//   - slo-check     — разбор /metrics controller и поиск SLO метрик
//
// Каждый сценарий возвращает Result со статусом passed, partial или failed.
// Набор результатов собирается в Report, который CLI может записать в файл.
package gameday
