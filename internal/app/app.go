// Package app собирает компоненты анализатора из конфигурации.
//
// Используется бинарником воркера и CLI: оба работают с одной БД и
// одними pipeline'ами.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"

	"github.com/shaiso/Analyzer/internal/billing"
	"github.com/shaiso/Analyzer/internal/config"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/index"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/repo"
	"github.com/shaiso/Analyzer/internal/rules"
	"github.com/shaiso/Analyzer/internal/steps"
)

// App - открытые ресурсы анализатора.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Fs     afero.Fs
	Pool   *pgxpool.Pool

	Tasks         *repo.TaskRepo
	Inputs        *repo.TaskInputRepo
	Components    *repo.ComponentRepo
	Measures      *repo.MeasureRepo
	Organizations *repo.OrganizationRepo
	QualityGates  *repo.QualityGateRepo

	indexOnce sync.Once
	index     *index.Indexer
	indexErr  error
}

// Open подключается к БД и создаёт репозитории.
// Индекс открывается лениво при первом обращении.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := repo.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Fs:            afero.NewOsFs(),
		Pool:          pool,
		Tasks:         repo.NewTaskRepo(pool),
		Inputs:        repo.NewTaskInputRepo(pool),
		Components:    repo.NewComponentRepo(pool),
		Measures:      repo.NewMeasureRepo(pool),
		Organizations: repo.NewOrganizationRepo(pool),
		QualityGates:  repo.NewQualityGateRepo(pool),
	}, nil
}

// Index возвращает поисковый индекс, открывая его при первом вызове.
func (a *App) Index() (*index.Indexer, error) {
	a.indexOnce.Do(func() {
		a.index, a.indexErr = index.Open(a.Config.Index.Path, a.Components, a.Logger)
	})
	return a.index, a.indexErr
}

// Dependencies собирает внешние компоненты шагов.
func (a *App) Dependencies() (steps.Dependencies, error) {
	ix, err := a.Index()
	if err != nil {
		return steps.Dependencies{}, fmt.Errorf("open index: %w", err)
	}

	ruleRepo, err := rules.Load(a.Fs, a.Config.Rules.Path)
	if err != nil {
		return steps.Dependencies{}, err
	}
	a.Logger.Info("rules loaded", "path", a.Config.Rules.Path, "count", ruleRepo.Len())

	validator := billing.NewValidator(billing.Config{
		BlockedOrganizations: a.Config.Billing.BlockedOrganizations,
		Message:              a.Config.Billing.Message,
		Logger:               a.Logger,
	})

	return steps.Dependencies{
		Settings: steps.Settings{
			Fs:                      a.Fs,
			WorkDir:                 a.Config.Worker.WorkDir,
			DefaultOrganizationKey:  a.Config.Organization.DefaultKey,
			ShortLivingBranchGateID: a.Config.QualityGate.ShortLivingBranchGateID,
		},
		Reports:      a.Inputs,
		Components:   a.Components,
		Measures:     a.Measures,
		Indexer:      ix,
		Billing:      validator,
		QualityGates: a.QualityGates,
		Rules:        ruleRepo,
	}, nil
}

// Pipelines собирает executor'ы всех типов задач.
func (a *App) Pipelines(opts ...pipeline.Option) (map[domain.TaskType]*pipeline.Executor, error) {
	deps, err := a.Dependencies()
	if err != nil {
		return nil, err
	}
	return Pipelines(deps, append([]pipeline.Option{pipeline.WithLogger(a.Logger)}, opts...)...)
}

// Close закрывает индекс и пул соединений.
func (a *App) Close() error {
	var err error
	if a.index != nil {
		err = a.index.Close()
	}
	a.Pool.Close()
	return err
}

// Pipelines регистрирует компоненты, строит шаги, запечатывает реестр и
// собирает executor'ы каталогов. Отсутствующий компонент или шаг
// обнаруживается здесь, до выполнения первой задачи.
func Pipelines(deps steps.Dependencies, opts ...pipeline.Option) (map[domain.TaskType]*pipeline.Executor, error) {
	reg := pipeline.NewRegistry()

	if err := steps.Provide(reg, deps); err != nil {
		return nil, fmt.Errorf("provide components: %w", err)
	}
	if err := steps.Register(reg); err != nil {
		return nil, fmt.Errorf("register steps: %w", err)
	}
	reg.Seal()

	executors, err := pipeline.AssembleAll(reg, steps.Catalogs(), opts...)
	if err != nil {
		return nil, err
	}
	return executors, nil
}
