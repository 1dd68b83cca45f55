// Package queue - постановка отчётов в очередь анализа.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/repo"
)

// Ошибки постановки в очередь.
var (
	// ErrProjectKeyRequired - ключ проекта не задан.
	ErrProjectKeyRequired = errors.New("project key is required")

	// ErrEmptyReport - архив отчёта пустой.
	ErrEmptyReport = errors.New("report archive is empty")
)

// TaskSubmitter сохраняет задачу вместе с архивом (repo.TaskRepo).
type TaskSubmitter interface {
	Submit(ctx context.Context, task *domain.Task, reportZip []byte) error
}

// ProjectStore - проекты (repo.ComponentRepo).
type ProjectStore interface {
	EnsureProject(ctx context.Context, key, name string) (*repo.ProjectRecord, error)
}

// OrganizationStore - организации (repo.OrganizationRepo).
type OrganizationStore interface {
	Ensure(ctx context.Context, key string) (*domain.Organization, error)
}

// Notifier будит воркеры (mq.Publisher).
type Notifier interface {
	PublishTaskPending(ctx context.Context, task *domain.Task) error
}

// Request - отчёт, отправленный на анализ.
type Request struct {
	ProjectKey      string
	ProjectName     string
	OrganizationKey string
	SubmitterLogin  string
	Report          []byte
}

// Result - поставленная задача.
type Result struct {
	Task *domain.Task

	// NotifyErr - ошибка уведомления воркеров. Задача при этом уже сохранена
	// и будет подхвачена polling'ом.
	NotifyErr error
}

// Submitter ставит отчёты в очередь.
type Submitter struct {
	tasks      TaskSubmitter
	projects   ProjectStore
	orgs       OrganizationStore
	notifier   Notifier
	defaultOrg string
	logger     *slog.Logger
}

// Config - зависимости Submitter.
type Config struct {
	Tasks         TaskSubmitter
	Projects      ProjectStore
	Organizations OrganizationStore

	// Notifier опционален.
	Notifier Notifier

	// DefaultOrganization - организация для запросов без OrganizationKey.
	DefaultOrganization string

	Logger *slog.Logger
}

// NewSubmitter создаёт Submitter.
func NewSubmitter(cfg Config) *Submitter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		tasks:      cfg.Tasks,
		projects:   cfg.Projects,
		orgs:       cfg.Organizations,
		notifier:   cfg.Notifier,
		defaultOrg: cfg.DefaultOrganization,
		logger:     logger,
	}
}

// Submit создаёт (при необходимости) организацию и проект, сохраняет
// задачу REPORT с архивом и уведомляет воркеры.
func (s *Submitter) Submit(ctx context.Context, req Request) (*Result, error) {
	projectKey := strings.TrimSpace(req.ProjectKey)
	if projectKey == "" {
		return nil, ErrProjectKeyRequired
	}
	if len(req.Report) == 0 {
		return nil, ErrEmptyReport
	}

	orgKey := strings.TrimSpace(req.OrganizationKey)
	if orgKey == "" {
		orgKey = s.defaultOrg
	}

	org, err := s.orgs.Ensure(ctx, orgKey)
	if err != nil {
		return nil, fmt.Errorf("organization %s: %w", orgKey, err)
	}
	project, err := s.projects.EnsureProject(ctx, projectKey, req.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", projectKey, err)
	}

	task := domain.NewReportTask(project.UUID, project.Key, org.UUID, org.Key, req.SubmitterLogin)
	if err := s.tasks.Submit(ctx, task, req.Report); err != nil {
		return nil, err
	}

	s.logger.Info("report submitted",
		"task_id", task.ID,
		"component_key", task.ComponentKey,
		"organization", task.OrganizationKey,
		"size", len(req.Report),
	)

	result := &Result{Task: task}
	if s.notifier != nil {
		if err := s.notifier.PublishTaskPending(ctx, task); err != nil {
			s.logger.Warn("failed to publish task.pending", "task_id", task.ID, "error", err)
			result.NotifyErr = err
		}
	}
	return result, nil
}
