// Package worker выполняет задачи анализа из очереди.
//
// # Обзор
//
// Worker - stateless компонент, который:
//
//   - Получает уведомления task.pending из RabbitMQ (event-driven)
//   - Периодически опрашивает PENDING задачи в БД (polling fallback)
//   - Атомарно забирает задачу (PENDING → IN_PROGRESS)
//   - Выполняет pipeline типа задачи в собственном TaskContext
//   - Сохраняет итог и публикует task.completed
//
// Несколько задач выполняются одновременно (Config.Concurrency), каждая
// со своим TaskContext. Общий pipeline.Executor безопасен для этого.
//
// # Итог задачи
//
//   - nil → SUCCESS, AnalysisUUID из результата задачи
//   - *pipeline.UserError → FAILED, ErrorType USER, текст дословно
//   - таймаут задачи, паника шага, прочие ошибки → FAILED, ErrorType DEFECT
//   - остановка воркера → задача возвращается в PENDING
//
// Повторов нет: упавшая задача не перезапускается. Зависшие IN_PROGRESS
// задачи возвращает в очередь cleaner из пакета scheduler.
package worker
