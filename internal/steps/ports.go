package steps

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/shaiso/Analyzer/internal/domain"
)

// ReportSource отдаёт zip-архив отчёта задачи.
// Если отчёта нет, ошибка оборачивает repo.ErrNotFound.
type ReportSource interface {
	OpenReport(ctx context.Context, taskID uuid.UUID) (io.ReadCloser, error)
}

// ComponentStore - хранилище компонентов проекта.
type ComponentStore interface {
	// UUIDsByProject возвращает UUID уже известных компонентов: key → uuid.
	UUIDsByProject(ctx context.Context, projectUUID string) (map[string]string, error)

	// Upsert сохраняет дерево компонентов проекта.
	Upsert(ctx context.Context, projectUUID string, root *domain.Component) error
}

// MeasureStore - хранилище показателей.
type MeasureStore interface {
	// LastDuplications возвращает показатели последнего анализа проекта по ключу компонента.
	LastDuplications(ctx context.Context, projectUUID string) (domain.DuplicationMeasures, error)

	// SaveDuplications сохраняет показатели анализа.
	SaveDuplications(ctx context.Context, md *domain.AnalysisMetadata, root *domain.Component, measures domain.DuplicationMeasures) error
}

// ProjectIndexer синхронизирует поисковый индекс проекта.
type ProjectIndexer interface {
	Index(ctx context.Context, projectUUID string) error
}

// BillingValidator проверяет, может ли организация анализировать проекты.
// Текст ошибки показывается пользователю дословно.
type BillingValidator interface {
	CheckOnProjectAnalysis(ctx context.Context, org domain.Organization) error
}

// QualityGateService ищет quality gate.
type QualityGateService interface {
	FindByID(ctx context.Context, id int64) (*domain.QualityGate, bool, error)
	FindDefault(ctx context.Context, org domain.Organization) (*domain.QualityGate, error)
}

// RuleRepository - внешний репозиторий правил.
type RuleRepository interface {
	FindByKey(key domain.RuleKey) (domain.Rule, bool)
}
