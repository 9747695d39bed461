package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeManuscripts Exchange = "atlas.manuscripts"
	ExchangeDLQ         Exchange = "atlas.dlq"
)

// Queues — имена очередей.
const (
	QueueManuscriptsSynced Queue = "manuscripts.synced"
	QueueDLQManuscripts    Queue = "dlq.manuscripts"
)

// Routing keys.
const (
	RoutingKeySynced         RoutingKey = "synced"
	RoutingKeyDLQManuscripts RoutingKey = "manuscripts"
)

// binding — привязка очереди к обменнику.
type binding struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
	args       amqp.Table
}

// bindings — полная топология Atlas.
var bindings = []binding{
	// manuscripts.synced — с DLQ (сообщение с битым payload уходит туда)
	{QueueManuscriptsSynced, RoutingKeySynced, ExchangeManuscripts, amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQManuscripts),
	}},
	{QueueDLQManuscripts, RoutingKeyDLQManuscripts, ExchangeDLQ, nil},
}

// SetupTopology объявляет exchanges, queues и bindings.
// Операция идемпотентна, её вызывают и publisher, и consumer при старте.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeManuscripts, ExchangeDLQ} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, b := range bindings {
			if _, err := ch.QueueDeclare(string(b.queue), true, false, false, false, b.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}
			if err := ch.QueueBind(string(b.queue), string(b.routingKey), string(b.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}
