// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//   - carrier.go    — перенос trace context через AMQP headers
//
// Типы сообщений:
//   - manuscript.synced — манускрипт синхронизирован (atlas-api → atlas-controller)
//
// Exchanges:
//   - atlas.manuscripts — события манускриптов
//   - atlas.dlq         — dead letter queue
package mq
