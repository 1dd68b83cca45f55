package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/queue"
	"github.com/shaiso/Analyzer/internal/repo"
)

// DefaultMaxReportSize - предельный размер загружаемого отчёта.
const DefaultMaxReportSize int64 = 100 << 20

// TaskStore - чтение и отмена задач (repo.TaskRepo).
type TaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, filter repo.TaskFilter) ([]domain.Task, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error)
}

// Submitter ставит отчёт в очередь (queue.Submitter).
type Submitter interface {
	Submit(ctx context.Context, req queue.Request) (*queue.Result, error)
}

// Handler - главный обработчик API с зависимостями.
type Handler struct {
	tasks         TaskStore
	submitter     Submitter
	maxReportSize int64
	observer      RequestObserver
	logger        *slog.Logger
}

// Config - конфигурация для создания Handler.
type Config struct {
	Tasks     TaskStore
	Submitter Submitter

	// MaxReportSize - предельный размер отчёта в байтах (0 - DefaultMaxReportSize).
	MaxReportSize int64

	// Observer опционален.
	Observer RequestObserver

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	if cfg.MaxReportSize <= 0 {
		cfg.MaxReportSize = DefaultMaxReportSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Handler{
		tasks:         cfg.Tasks,
		submitter:     cfg.Submitter,
		maxReportSize: cfg.MaxReportSize,
		observer:      cfg.Observer,
		logger:        cfg.Logger,
	}
}
