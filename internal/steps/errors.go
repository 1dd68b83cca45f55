package steps

import (
	"errors"

	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/report"
)

// Ошибки шагов.
var (
	// ErrReportMissing - для задачи нет загруженного отчёта.
	ErrReportMissing = errors.New("report is missing")

	// ErrMalformedProperty - свойство проекта имеет недопустимое значение.
	ErrMalformedProperty = errors.New("malformed property")

	// ErrGateNotFound - quality gate с фиксированным id отсутствует.
	ErrGateNotFound = errors.New("quality gate not found")

	// ErrInvalidTree - components.json не описывает дерево.
	ErrInvalidTree = errors.New("invalid component tree")
)

// reportContentError переводит ошибки содержимого присланного отчёта
// (битый JSON, некорректное дерево компонентов) в UserError.
func reportContentError(err error) error {
	if errors.Is(err, report.ErrMalformed) || errors.Is(err, ErrInvalidTree) {
		return pipeline.WrapUserError(err)
	}
	return err
}
