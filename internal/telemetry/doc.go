// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go - structured logging через slog
//   - metrics.go - Prometheus метрики шагов, задач и HTTP API
//
// Metrics реализует pipeline.Observer: executor сообщает время и итог
// каждого шага, воркер сообщает итог задачи. HTTPMetrics считает запросы
// API по шаблону маршрута. Метрики экспортируются на /metrics вместе с /healthz.
package telemetry
