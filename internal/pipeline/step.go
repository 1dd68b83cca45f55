package pipeline

import (
	"context"
	"reflect"

	"github.com/shaiso/Analyzer/internal/analysis"
)

// Step - один шаг pipeline'а.
//
// Каждый шаг (извлечение отчёта, загрузка метаданных, quality gate и т.д.)
// реализует этот интерфейс. Шаги не хранят состояние задачи: всё состояние
// живёт в holder'ах TaskContext.
type Step interface {
	// Description возвращает человекочитаемое имя шага для логов и ошибок.
	Description() string

	// Execute выполняет шаг. Возвращает nil, *UserError или ошибку-дефект.
	Execute(ctx context.Context, tc *analysis.TaskContext) error
}

// StepType возвращает ключ реестра для типа шага S.
//
//	pipeline.StepType[*steps.ExtractReportStep]()
func StepType[S Step]() reflect.Type {
	return reflect.TypeFor[S]()
}
