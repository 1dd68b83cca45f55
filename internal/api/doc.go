// Package api содержит HTTP API очереди анализа.
//
// Структура:
//   - handler.go        - Handler с DI (очередь задач, постановщик, logger)
//   - routes.go         - регистрация маршрутов
//   - middleware.go     - middleware (logging, recovery)
//   - response.go       - конверты {"data"} / {"error"}, коды ошибок по виду ошибки
//   - dto.go            - Data Transfer Objects (request/response)
//   - submit_handler.go - загрузка отчёта
//   - task_handler.go   - задачи, activity и счётчики очереди
//
// Маршруты:
//
//	POST /api/ce/submit             multipart: report + projectKey, projectName, organization, submitter
//	GET  /api/ce/task/{id}          задача
//	POST /api/ce/task/{id}/cancel   отмена PENDING задачи
//	GET  /api/ce/activity           список задач (status, component, limit, offset)
//	GET  /api/ce/activity_status    количество задач по статусам
package api
