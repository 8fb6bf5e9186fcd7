package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Concierge/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeLotBroken   MessageType = "lot.broken"
	MessageTypeLotResolved MessageType = "lot.resolved"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// LotBrokenPayload — payload события о сломанном лоте.
type LotBrokenPayload struct {
	LotID    string    `json:"lot_id"`
	Rev      string    `json:"rev"`
	LotType  string    `json:"lot_type"`
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	BrokenAt time.Time `json:"broken_at"`
}

// LotResolvedPayload — payload события о снятой записи.
type LotResolvedPayload struct {
	LotID string `json:"lot_id"`
	Rev   string `json:"rev"`
}

// Notifier публикует операторские события ledger'а в RabbitMQ.
//
// Публикация — fire-and-forget: запись в ledger важнее алерта, поэтому
// ошибка публикации логируется, но наружу не отдаётся.
type Notifier struct {
	conn   *Connection
	logger *slog.Logger
}

// NewNotifier создаёт Notifier поверх готового соединения.
func NewNotifier(conn *Connection, logger *slog.Logger) *Notifier {
	return &Notifier{
		conn:   conn,
		logger: logger,
	}
}

// LotBroken публикует событие о сломанном лоте.
func (n *Notifier) LotBroken(ctx context.Context, record domain.BrokenLotRecord) {
	n.publish(ctx, RoutingKeyBroken, MessageTypeLotBroken, LotBrokenPayload{
		LotID:    record.Lot.ID,
		Rev:      record.Rev,
		LotType:  string(record.Lot.LotType),
		Status:   string(record.Lot.Status),
		Message:  record.Message,
		BrokenAt: record.BrokenAt,
	})
}

// LotResolved публикует событие о снятой записи.
func (n *Notifier) LotResolved(ctx context.Context, lotID, rev string) {
	n.publish(ctx, RoutingKeyResolved, MessageTypeLotResolved, LotResolvedPayload{
		LotID: lotID,
		Rev:   rev,
	})
}

func (n *Notifier) publish(ctx context.Context, routingKey RoutingKey, msgType MessageType, payload any) {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("marshal mq message", "type", msgType, "error", err)
		return
	}

	err = n.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeLots), // exchange
			string(routingKey),   // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeLots, routingKey, err)
		}
		return nil
	})
	if err != nil {
		n.logger.Error("publish mq message", "type", msgType, "error", err)
		return
	}

	n.logger.Debug("published message",
		"routing_key", routingKey,
		"message_id", msg.ID,
		"type", msg.Type,
	)
}
