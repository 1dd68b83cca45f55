package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Analyzer/internal/domain"
)

// ErrUnknownTaskType - для типа задачи нет pipeline'а.
var ErrUnknownTaskType = errors.New("unknown task type")

// NewMigrateCmd создаёт команду применения схемы БД.
func NewMigrateCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backendFn(cmd.Context())
			if err != nil {
				return err
			}

			if err := b.Migrate(cmd.Context()); err != nil {
				return err
			}

			outputFn().Success("Schema is up to date")
			return nil
		},
	}
}

// NewCatalogCmd создаёт команду вывода шагов pipeline'а.
// Собирает pipeline'ы так же, как воркер, поэтому заодно проверяет проводку.
func NewCatalogCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	var taskType string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show ordered pipeline steps of a task type",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backendFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			executors, err := b.Pipelines()
			if err != nil {
				return err
			}

			e, ok := executors[domain.TaskType(taskType)]
			if !ok {
				known := make([]string, 0, len(executors))
				for t := range executors {
					known = append(known, string(t))
				}
				sort.Strings(known)
				return fmt.Errorf("%w %q (known: %v)", ErrUnknownTaskType, taskType, known)
			}

			descriptions := e.Descriptions()
			rows := make([][]string, len(descriptions))
			for i, d := range descriptions {
				rows[i] = []string{strconv.Itoa(i + 1), d}
			}

			out.Print([]string{"#", "STEP"}, rows, descriptions)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskType, "type", string(domain.TaskTypeReport), "Task type")

	return cmd
}

// NewSearchCmd создаёт команду поиска компонентов по индексу.
func NewSearchCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search indexed components by key, name or path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backendFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			searcher, err := b.Search()
			if err != nil {
				return err
			}

			docs, err := searcher.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			rows := make([][]string, len(docs))
			for i, d := range docs {
				rows[i] = []string{d.Key, d.Qualifier, orDash(d.Language), d.ProjectUUID, formatTime(&d.IndexedAt)}
			}

			out.Print([]string{"KEY", "QUALIFIER", "LANGUAGE", "PROJECT", "INDEXED"}, rows, docs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of results")

	return cmd
}
