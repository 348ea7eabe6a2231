package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Lineage/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeHashRecorded MessageType = "hash.recorded"
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

// HashRecordedPayload — payload события о вычисленном provenance-хэше.
// Потребитель: Indexer.
type HashRecordedPayload struct {
	Workflow    string    `json:"workflow"`
	JobID       string    `json:"job_id"`
	Digest      string    `json:"digest"`
	AlgoVersion string    `json:"algo_version"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch := p.conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	err = ch.PublishWithContext(
		ctx,
		string(exchange),   // exchange
		string(routingKey), // routing key
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
		return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
	}

	p.logger.Debug("published message",
		"exchange", exchange,
		"routing_key", routingKey,
		"message_id", msg.ID,
		"type", msg.Type,
	)

	return nil
}

// PublishHashRecorded публикует событие о вычисленном provenance-хэше.
func (p *Publisher) PublishHashRecorded(ctx context.Context, rec *domain.HashRecord) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeHashRecorded,
		Payload: HashRecordedPayload{
			Workflow:    rec.Workflow,
			JobID:       rec.JobID,
			Digest:      rec.Digest,
			AlgoVersion: rec.AlgoVersion,
			ComputedAt:  rec.ComputedAt,
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeHashes, RoutingKeyRecorded, msg)
}
