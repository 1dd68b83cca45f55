package domain

// TaskStatus - статус задачи в очереди.
//
// Жизненный цикл:
//
//	PENDING → IN_PROGRESS → SUCCESS
//	                      ↘ FAILED
//	(или) → CANCELED (только из PENDING)
type TaskStatus string

const (
	// TaskStatusPending - задача в очереди, ожидает воркера.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusInProgress - задача выполняется воркером.
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"

	// TaskStatusSuccess - pipeline задачи завершился успешно.
	TaskStatusSuccess TaskStatus = "SUCCESS"

	// TaskStatusFailed - pipeline остановлен ошибкой.
	TaskStatusFailed TaskStatus = "FAILED"

	// TaskStatusCanceled - задача отменена до начала выполнения.
	TaskStatusCanceled TaskStatus = "CANCELED"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusSuccess, TaskStatusFailed, TaskStatusCanceled:
		return true
	default:
		return false
	}
}

// ParseTaskStatus парсит строку в TaskStatus. Второе значение false для неизвестных строк.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusSuccess, TaskStatusFailed, TaskStatusCanceled:
		return TaskStatus(s), true
	default:
		return "", false
	}
}

// ErrorType - вид ошибки, остановившей pipeline.
type ErrorType string

const (
	// ErrorTypeUser - ошибка для конечного пользователя (некорректный отчёт, отказ биллинга).
	ErrorTypeUser ErrorType = "USER"

	// ErrorTypeDefect - ошибка проводки или нарушенный инвариант.
	ErrorTypeDefect ErrorType = "DEFECT"
)
