// Analyzer CLI - инструмент командной строки для очереди анализа.
//
// Использование:
//
//	analyzer [--config FILE] [--json] <command> [subcommand] [flags]
//
// Команды:
//
//	migrate   Применить схему БД
//	submit    Отправить отчёт сканера на анализ
//	task      Просмотр и отмена задач
//	catalog   Шаги pipeline'а типа задачи
//	search    Поиск компонентов по индексу
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Analyzer/internal/app"
	"github.com/shaiso/Analyzer/internal/cli"
	"github.com/shaiso/Analyzer/internal/config"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/mq"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/queue"
	"github.com/shaiso/Analyzer/internal/repo"
	"github.com/shaiso/Analyzer/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var configPath string
	var jsonOutput bool
	var noNotify bool

	var (
		opened  *app.App
		mqConn  *mq.Connection
		backend *cli.Backend
	)

	rootCmd := &cobra.Command{
		Use:           "analyzer",
		Short:         "Analyzer CLI - analysis task queue tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: ./analyzer.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noNotify, "no-notify", false, "Do not publish task.pending to RabbitMQ")

	backendFn := func(ctx context.Context) (*cli.Backend, error) {
		if backend != nil {
			return backend, nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		// Логи CLI идут в stderr, чтобы не смешиваться с данными.
		logger := telemetry.NewLogger(os.Stderr, telemetry.LogConfig{Level: "WARN", Format: "text"})

		a, err := app.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opened = a

		var notifier queue.Notifier
		if !noNotify {
			conn, err := mq.Dial(mq.ConnectionConfig{
				URL:     cfg.RabbitMQ.URL,
				Backoff: mq.Backoff{Min: cfg.RabbitMQ.ReconnectMin, Max: cfg.RabbitMQ.ReconnectMax},
				Logger:  logger,
			})
			if err != nil {
				logger.Warn("RabbitMQ not available, workers will pick tasks up by polling", "error", err)
			} else {
				mqConn = conn
				notifier = mq.NewPublisher(conn, logger)
			}
		}

		backend = &cli.Backend{
			Fs:    a.Fs,
			Tasks: a.Tasks,
			Submitter: queue.NewSubmitter(queue.Config{
				Tasks:               a.Tasks,
				Projects:            a.Components,
				Organizations:       a.Organizations,
				Notifier:            notifier,
				DefaultOrganization: cfg.Organization.DefaultKey,
				Logger:              logger,
			}),
			Search: func() (cli.Searcher, error) {
				return a.Index()
			},
			Pipelines: func() (map[domain.TaskType]*pipeline.Executor, error) {
				return a.Pipelines()
			},
			Migrate: func(ctx context.Context) error {
				return repo.Migrate(ctx, a.Pool)
			},
		}

		return backend, nil
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewMigrateCmd(backendFn, outputFn),
		cli.NewSubmitCmd(backendFn, outputFn),
		cli.NewTaskCmd(backendFn, outputFn),
		cli.NewCatalogCmd(backendFn, outputFn),
		cli.NewSearchCmd(backendFn, outputFn),
	)

	err := rootCmd.Execute()

	if mqConn != nil {
		mqConn.Close()
	}
	if opened != nil {
		opened.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
