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

// ExchangeLots — обменник событий по лотам.
const ExchangeLots Exchange = "concierge.lots"

// Queues — имена очередей.
const (
	QueueLotsBroken   Queue = "lots.broken"
	QueueLotsResolved Queue = "lots.resolved"
)

// Routing keys.
const (
	RoutingKeyBroken   RoutingKey = "broken"
	RoutingKeyResolved RoutingKey = "resolved"
)

// SetupTopology объявляет обменник и очереди операторских событий.
// Идемпотентно: повторное объявление существующей топологии безопасно.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeLots), // name
			"direct",             // type
			true,                 // durable
			false,                // auto-deleted
			false,                // internal
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeLots, err)
		}

		bindings := []struct {
			queue      Queue
			routingKey RoutingKey
		}{
			{QueueLotsBroken, RoutingKeyBroken},
			{QueueLotsResolved, RoutingKeyResolved},
		}
		for _, b := range bindings {
			_, err := ch.QueueDeclare(
				string(b.queue), // name
				true,            // durable
				false,           // delete when unused
				false,           // exclusive
				false,           // no-wait
				nil,             // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}
			err = ch.QueueBind(
				string(b.queue),      // queue name
				string(b.routingKey), // routing key
				string(ExchangeLots), // exchange
				false,                // no-wait
				nil,                  // arguments
			)
			if err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, ExchangeLots, err)
			}
		}

		return nil
	})
}
