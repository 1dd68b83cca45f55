package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/index"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/queue"
	"github.com/shaiso/Analyzer/internal/repo"
)

// TaskQueue - очередь задач (repo.TaskRepo).
type TaskQueue interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, filter repo.TaskFilter) ([]domain.Task, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error)
}

// ReportSubmitter ставит отчёт в очередь (queue.Submitter).
type ReportSubmitter interface {
	Submit(ctx context.Context, req queue.Request) (*queue.Result, error)
}

// Searcher - поиск по индексу компонентов.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]index.Document, error)
}

// Backend - то, с чем работают команды. Собирается в main после разбора флагов.
type Backend struct {
	Fs        afero.Fs
	Tasks     TaskQueue
	Submitter ReportSubmitter

	Search    func() (Searcher, error)
	Pipelines func() (map[domain.TaskType]*pipeline.Executor, error)
	Migrate   func(ctx context.Context) error
}

// BackendFn лениво создаёт Backend.
type BackendFn func(ctx context.Context) (*Backend, error)
