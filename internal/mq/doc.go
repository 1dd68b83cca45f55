// Package mq - уведомления очереди задач через RabbitMQ.
//
// Источник истины - таблица ce_queue; сообщения только будят воркеры и
// сообщают о завершении. Потерянное сообщение не теряет задачу: воркер
// периодически опрашивает БД.
//
// Структура:
//   - connection.go - соединение, backoff переподключения, топология на каждом канале
//   - topology.go   - exchanges, queues, bindings
//   - publisher.go  - публикация task.pending / task.completed
//   - consumer.go   - потребление с ack/nack
//
// Topology:
//
//	analyzer.ce (direct)
//	├── ce.tasks.pending   [pending]   -> воркеры, DLQ: dlq.ce.tasks
//	└── ce.tasks.completed [completed] -> внешние подписчики
//	analyzer.dlq (direct)
//	└── dlq.ce.tasks       [tasks]
package mq
