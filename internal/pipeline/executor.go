package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
)

// Observer получает время и итог каждого шага.
type Observer interface {
	ObserveStep(taskType domain.TaskType, step string, elapsed time.Duration, kind Kind)
}

type nopObserver struct{}

func (nopObserver) ObserveStep(domain.TaskType, string, time.Duration, Kind) {}

// Executor выполняет шаги каталога по порядку с fail-fast семантикой.
//
// Executor не хранит состояние задачи и может выполнять несколько задач
// одновременно: каждая получает свой TaskContext.
type Executor struct {
	taskType domain.TaskType
	steps    []Step
	logger   *slog.Logger
	observer Observer
}

// Option настраивает Executor.
type Option func(*Executor)

// WithLogger задаёт логгер, используемый когда у TaskContext его нет.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithObserver задаёт наблюдателя шагов (метрики).
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// Assemble разрешает все шаги каталога из реестра.
//
// Если хотя бы один шаг не зарегистрирован, возвращает ошибку с точным
// типом шага, и ни один шаг не выполняется.
func Assemble(catalog *Catalog, reg *Registry, opts ...Option) (*Executor, error) {
	steps := make([]Step, 0, catalog.Len())
	for _, t := range catalog.Steps() {
		step, err := reg.ResolveStep(t)
		if err != nil {
			return nil, fmt.Errorf("assemble %s pipeline: %w", catalog.TaskType(), err)
		}
		steps = append(steps, step)
	}

	e := &Executor{
		taskType: catalog.TaskType(),
		steps:    steps,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e, nil
}

// AssembleAll собирает executor'ы для нескольких каталогов.
func AssembleAll(reg *Registry, catalogs []*Catalog, opts ...Option) (map[domain.TaskType]*Executor, error) {
	executors := make(map[domain.TaskType]*Executor, len(catalogs))
	for _, c := range catalogs {
		e, err := Assemble(c, reg, opts...)
		if err != nil {
			return nil, err
		}
		executors[c.TaskType()] = e
	}
	return executors, nil
}

// TaskType возвращает тип задачи executor'а.
func (e *Executor) TaskType() domain.TaskType {
	return e.taskType
}

// Descriptions возвращает описания шагов в порядке выполнения.
func (e *Executor) Descriptions() []string {
	names := make([]string, len(e.steps))
	for i, s := range e.steps {
		names[i] = s.Description()
	}
	return names
}

// Execute выполняет шаги по порядку.
//
// Первая ошибка шага останавливает pipeline и возвращается без изменений.
// Отмена контекста проверяется только на границах шагов; таймаут задаёт
// вызывающий слой.
func (e *Executor) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	logger := tc.Logger
	if logger == nil {
		logger = e.logger
	}

	for i, step := range e.steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("pipeline canceled",
				"step", step.Description(),
				"reason", err,
			)
			return fmt.Errorf("%w before step %q: %w", ErrCanceled, step.Description(), err)
		}

		start := time.Now()
		err := step.Execute(ctx, tc)
		elapsed := time.Since(start)

		kind := KindOf(err)
		e.observer.ObserveStep(e.taskType, step.Description(), elapsed, kind)

		switch kind {
		case KindNone:
			logger.Info("step done",
				"step", step.Description(),
				"index", i+1,
				"total", len(e.steps),
				"duration_ms", elapsed.Milliseconds(),
			)
		case KindUser:
			logger.Warn("step rejected task",
				"step", step.Description(),
				"duration_ms", elapsed.Milliseconds(),
				"error", err,
			)
			return err
		default:
			logger.Error("step failed",
				"step", step.Description(),
				"duration_ms", elapsed.Milliseconds(),
				"kind", kind.String(),
				"error", err,
			)
			return err
		}
	}

	return nil
}
