package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange - тип для имени обменника.
type Exchange string

// Queue - тип для имени очереди.
type Queue string

// RoutingKey - тип для ключа маршрутизации.
type RoutingKey string

// Exchanges - имена обменников.
const (
	ExchangeCE  Exchange = "analyzer.ce"
	ExchangeDLQ Exchange = "analyzer.dlq"
)

// Queues - имена очередей.
const (
	QueueTasksPending   Queue = "ce.tasks.pending"
	QueueTasksCompleted Queue = "ce.tasks.completed"
	QueueDLQTasks       Queue = "dlq.ce.tasks"
)

// Routing keys.
const (
	RoutingKeyPending   RoutingKey = "pending"
	RoutingKeyCompleted RoutingKey = "completed"
	RoutingKeyDLQTasks  RoutingKey = "tasks"
)

type exchangeDecl struct {
	name Exchange
	kind string
}

type queueDecl struct {
	name Queue
	args amqp.Table
}

type bindingDecl struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
}

// Topology - объявления RabbitMQ.
type Topology struct {
	Exchanges []exchangeDecl
	Queues    []queueDecl
	Bindings  []bindingDecl
}

// DefaultTopology возвращает топологию очереди задач.
func DefaultTopology() Topology {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQTasks),
	}

	return Topology{
		Exchanges: []exchangeDecl{
			{ExchangeCE, "direct"},
			{ExchangeDLQ, "direct"},
		},
		Queues: []queueDecl{
			{QueueTasksPending, dlqArgs},
			{QueueTasksCompleted, nil},
			{QueueDLQTasks, nil},
		},
		Bindings: []bindingDecl{
			{QueueTasksPending, RoutingKeyPending, ExchangeCE},
			{QueueTasksCompleted, RoutingKeyCompleted, ExchangeCE},
			{QueueDLQTasks, RoutingKeyDLQTasks, ExchangeDLQ},
		},
	}
}

// declare объявляет exchanges, queues и bindings на канале. Идемпотентна.
func (t Topology) declare(ch *amqp.Channel) error {
	for _, ex := range t.Exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	for _, q := range t.Queues {
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

	for _, b := range t.Bindings {
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
