package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/repo"
)

// NewTaskCmd создаёт группу команд для очереди задач.
func NewTaskCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and manage analysis tasks",
	}

	cmd.AddCommand(
		newTaskListCmd(backendFn, outputFn),
		newTaskShowCmd(backendFn, outputFn),
		newTaskCancelCmd(backendFn, outputFn),
		newTaskStatsCmd(backendFn, outputFn),
	)

	return cmd
}

func newTaskListCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	var status string
	var component string
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repo.TaskFilter{
				ComponentKey: component,
				Limit:        limit,
				Offset:       offset,
			}
			if status != "" {
				s, ok := domain.ParseTaskStatus(status)
				if !ok {
					return fmt.Errorf("invalid status %q", status)
				}
				filter.Status = &s
			}

			b, err := backendFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			tasks, err := b.Tasks.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([][]string, len(tasks))
			for i := range tasks {
				rows[i] = taskRow(&tasks[i])
			}

			out.Print(taskHeaders, rows, tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, IN_PROGRESS, SUCCESS, FAILED, CANCELED)")
	cmd.Flags().StringVar(&component, "component", "", "Filter by component key")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}

func newTaskShowCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			b, err := backendFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			task, err := b.Tasks.GetByID(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("task %s: %w", id, err)
			}

			out.Print(
				[]string{"ID", "TYPE", "COMPONENT", "ORGANIZATION", "STATUS", "EXECUTIONS", "ANALYSIS", "STARTED", "FINISHED", "ERROR"},
				[][]string{{
					task.ID.String(),
					string(task.Type),
					orDash(task.ComponentKey),
					task.OrganizationKey,
					string(task.Status),
					strconv.Itoa(task.ExecutionCount),
					orDash(task.AnalysisUUID),
					formatTime(task.StartedAt),
					formatTime(task.FinishedAt),
					errorText(task),
				}},
				task,
			)
			return nil
		},
	}
}

func newTaskCancelCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			b, err := backendFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			if err := b.Tasks.Cancel(cmd.Context(), id); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Task canceled: %s", id))
			return nil
		},
	}
}

func newTaskStatsCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count tasks by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backendFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			counts, err := b.Tasks.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}

			statuses := make([]string, 0, len(counts))
			for s := range counts {
				statuses = append(statuses, string(s))
			}
			sort.Strings(statuses)

			rows := make([][]string, len(statuses))
			for i, s := range statuses {
				rows[i] = []string{s, strconv.Itoa(counts[domain.TaskStatus(s)])}
			}

			out.Print([]string{"STATUS", "COUNT"}, rows, counts)
			return nil
		},
	}
}

func parseTaskID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q: %w", s, err)
	}
	return id, nil
}

func errorText(t *domain.Task) string {
	if t.ErrorMessage == "" {
		return "-"
	}
	return fmt.Sprintf("[%s] %s", t.ErrorType, t.ErrorMessage)
}
