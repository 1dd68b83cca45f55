package pipeline

import (
	"context"
	"fmt"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
)

// ModeDispatch - одна запись каталога с двумя стратегиями.
//
// Режим читается из AnalysisMetadata в момент выполнения, вызывается ровно
// одна стратегия. Вторая не получает ни одного вызова: запуск обеих испортил
// бы производные показатели. Сам ModeDispatch состояния не хранит.
type ModeDispatch struct {
	description string
	full        Step
	incremental Step
}

// NewModeDispatch создаёт диспетчер. Обе стратегии обязательны.
func NewModeDispatch(description string, full, incremental Step) *ModeDispatch {
	if full == nil || incremental == nil {
		panic("pipeline: ModeDispatch requires both full and incremental strategies")
	}
	return &ModeDispatch{
		description: description,
		full:        full,
		incremental: incremental,
	}
}

// Description возвращает описание логического шага.
func (d *ModeDispatch) Description() string {
	return d.description
}

// Select возвращает стратегию для режима.
func (d *ModeDispatch) Select(mode domain.AnalysisMode) (Step, error) {
	switch mode {
	case domain.ModeFull:
		return d.full, nil
	case domain.ModeIncremental:
		return d.incremental, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
}

// Execute выбирает стратегию по метаданным и выполняет её.
func (d *ModeDispatch) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}

	strategy, err := d.Select(md.Mode())
	if err != nil {
		return err
	}

	tc.Logger.Debug("strategy selected",
		"step", d.description,
		"mode", md.Mode().String(),
		"strategy", strategy.Description(),
	)

	return strategy.Execute(ctx, tc)
}
