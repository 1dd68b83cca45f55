package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Analyzer/internal/domain"
)

// MessageType - тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeTaskPending   MessageType = "task.pending"
	MessageTypeTaskCompleted MessageType = "task.completed"
)

// Message - сообщение для публикации.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage создаёт сообщение с JSON payload.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// TaskPendingPayload - задача ожидает выполнения.
type TaskPendingPayload struct {
	TaskID       uuid.UUID       `json:"task_id"`
	TaskType     domain.TaskType `json:"task_type"`
	ComponentKey string          `json:"component_key,omitempty"`
}

// TaskCompletedPayload - задача завершена.
type TaskCompletedPayload struct {
	TaskID       uuid.UUID         `json:"task_id"`
	TaskType     domain.TaskType   `json:"task_type"`
	Status       domain.TaskStatus `json:"status"`
	ComponentKey string            `json:"component_key,omitempty"`
	AnalysisUUID string            `json:"analysis_uuid,omitempty"`
	ErrorType    domain.ErrorType  `json:"error_type,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	DurationMs   int64             `json:"duration_ms"`
}

// CompletedPayloadOf строит payload завершения по задаче.
func CompletedPayloadOf(task *domain.Task) TaskCompletedPayload {
	return TaskCompletedPayload{
		TaskID:       task.ID,
		TaskType:     task.Type,
		Status:       task.Status,
		ComponentKey: task.ComponentKey,
		AnalysisUUID: task.AnalysisUUID,
		ErrorType:    task.ErrorType,
		ErrorMessage: task.ErrorMessage,
		DurationMs:   task.Duration().Milliseconds(),
	}
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Type:         string(msg.Type),
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
	})
}

// PublishTaskPending будит воркеры: появилась задача.
func (p *Publisher) PublishTaskPending(ctx context.Context, task *domain.Task) error {
	msg, err := NewMessage(MessageTypeTaskPending, TaskPendingPayload{
		TaskID:       task.ID,
		TaskType:     task.Type,
		ComponentKey: task.ComponentKey,
	})
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeCE, RoutingKeyPending, msg)
}

// PublishTaskCompleted сообщает о завершении задачи.
func (p *Publisher) PublishTaskCompleted(ctx context.Context, task *domain.Task) error {
	msg, err := NewMessage(MessageTypeTaskCompleted, CompletedPayloadOf(task))
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeCE, RoutingKeyCompleted, msg)
}
