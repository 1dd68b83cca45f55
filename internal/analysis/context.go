// Package analysis содержит состояние одной задачи анализа.
package analysis

import (
	"log/slog"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/holder"
	"github.com/shaiso/Analyzer/internal/report"
)

// TaskContext - состояние задачи, передаваемое по ссылке в каждый шаг.
//
// Создаётся воркером на одну задачу и выбрасывается после неё. Шаги не
// должны сохранять ссылки на TaskContext или его holder'ы.
type TaskContext struct {
	// Task - выполняемая задача.
	Task *domain.Task

	// Logger - логгер с task_id.
	Logger *slog.Logger

	ReportDir    *holder.Holder[report.Dir]
	Metadata     *holder.Holder[*domain.AnalysisMetadata]
	Tree         *holder.Holder[*domain.Component]
	ActiveRules  *holder.Holder[domain.ActiveRuleSet]
	QualityGate  *holder.Holder[*domain.QualityGate]
	Duplications *holder.Holder[domain.DuplicationMeasures]

	// Result перезаписываемый: итог может уточняться до конца pipeline'а.
	Result *holder.Holder[*domain.TaskResult]
}

// NewTaskContext создаёт пустой контекст задачи.
func NewTaskContext(task *domain.Task, logger *slog.Logger) *TaskContext {
	if logger == nil {
		logger = slog.Default()
	}
	if task != nil {
		logger = logger.With("task_id", task.ID.String())
	}

	return &TaskContext{
		Task:         task,
		Logger:       logger,
		ReportDir:    holder.New[report.Dir]("report directory"),
		Metadata:     holder.New[*domain.AnalysisMetadata]("analysis metadata"),
		Tree:         holder.New[*domain.Component]("component tree"),
		ActiveRules:  holder.New[domain.ActiveRuleSet]("active rules"),
		QualityGate:  holder.New[*domain.QualityGate]("quality gate"),
		Duplications: holder.New[domain.DuplicationMeasures]("duplication measures"),
		Result:       holder.NewOverwritable[*domain.TaskResult]("task result"),
	}
}

// Close освобождает ресурсы задачи (рабочую директорию отчёта).
func (tc *TaskContext) Close() error {
	if !tc.ReportDir.IsPresent() {
		return nil
	}
	dir, _ := tc.ReportDir.Get()
	return dir.Remove()
}
