package worker

import "errors"

// Ошибки воркера.
var (
	// ErrTaskNotFound - задачи нет в очереди.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotPending - задачу уже забрал другой воркер или она отменена.
	ErrTaskNotPending = errors.New("task is not pending")

	// ErrNoPipeline - для типа задачи не собран executor.
	ErrNoPipeline = errors.New("no pipeline for task type")

	// ErrStepPanic - шаг запаниковал.
	ErrStepPanic = errors.New("step panicked")

	// ErrTaskTimeout - задача не уложилась в task_timeout.
	ErrTaskTimeout = errors.New("task timed out")
)
