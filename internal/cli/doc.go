// Package cli реализует инструмент командной строки анализатора.
//
// # Обзор
//
// CLI работает напрямую с БД очереди и индексом; воркеры узнают о новых
// задачах через RabbitMQ или polling.
//
// # Ключевые компоненты
//
// ## Backend
//
// Набор интерфейсов (очередь задач, проекты, организации, уведомления,
// индекс, pipeline'ы). Создаётся в main лениво через BackendFn, после
// разбора PersistentFlags, поэтому --help не требует БД.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) - по умолчанию
//   - JSON (json.MarshalIndent) - с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Warn/Error) - в stderr.
// Это позволяет использовать pipe: analyzer task list --json | jq .
//
// ## Commands
//
//   - migrate: применить схему БД
//   - submit: отправить отчёт (директория или zip) на анализ
//   - task: list, show, cancel, stats
//   - catalog: шаги pipeline'а типа задачи
//   - search: поиск компонентов по индексу
package cli
