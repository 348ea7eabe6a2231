package mq

import "fmt"

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeHashes Exchange = "lineage.hashes"
	ExchangeDLQ    Exchange = "lineage.dlq"
)

// Queues — имена очередей.
const (
	QueueHashesRecorded Queue = "hashes.recorded"
	QueueDLQHashes      Queue = "dlq.hashes"
)

// Routing keys.
const (
	RoutingKeyRecorded  RoutingKey = "recorded"
	RoutingKeyDLQHashes RoutingKey = "hashes"
)

// SetupTopology объявляет exchanges, queues и bindings.
// Идемпотентно: повторный вызов на существующей топологии безопасен.
func SetupTopology(conn *Connection) error {
	ch := conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	exchanges := []Exchange{ExchangeHashes, ExchangeDLQ}
	for _, ex := range exchanges {
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

	// hashes.recorded — с DLQ: события после исчерпания retry уходят
	// в dlq.hashes для ручного разбора
	queues := []struct {
		name Queue
		args map[string]any
	}{
		{QueueHashesRecorded, map[string]any{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQHashes),
		}},
		{QueueDLQHashes, nil},
	}
	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueHashesRecorded, RoutingKeyRecorded, ExchangeHashes},
		{QueueDLQHashes, RoutingKeyDLQHashes, ExchangeDLQ},
	}
	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
