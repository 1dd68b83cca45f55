package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shaiso/Analyzer/internal/queue"
	"github.com/shaiso/Analyzer/internal/report"
)

// NewSubmitCmd создаёт команду отправки отчёта на анализ.
//
// Отчёт - директория (упаковывается в zip) или готовый zip-архив.
// Для директории ключи проекта и организации по умолчанию берутся из
// metadata.json.
func NewSubmitCmd(backendFn BackendFn, outputFn func() *Output) *cobra.Command {
	var req queue.Request

	cmd := &cobra.Command{
		Use:   "submit PATH",
		Short: "Submit a scanner report for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := backendFn(ctx)
			if err != nil {
				return err
			}
			out := outputFn()

			archive, md, err := readReport(b.Fs, args[0])
			if err != nil {
				return err
			}
			req.Report = archive
			if md != nil {
				if req.ProjectKey == "" {
					req.ProjectKey = md.ProjectKey
				}
				if req.OrganizationKey == "" {
					req.OrganizationKey = md.OrganizationKey
				}
			}

			res, err := b.Submitter.Submit(ctx, req)
			if err != nil {
				return err
			}
			if res.NotifyErr != nil {
				out.Warn(fmt.Sprintf("task saved, notification failed: %v", res.NotifyErr))
			}

			out.Success(fmt.Sprintf("Task submitted: %s", res.Task.ID))
			out.Print(taskHeaders, [][]string{taskRow(res.Task)}, res.Task)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ProjectKey, "project", "", "Project key (default: project_key from metadata.json)")
	cmd.Flags().StringVar(&req.ProjectName, "name", "", "Project name for a new project (default: key)")
	cmd.Flags().StringVar(&req.OrganizationKey, "organization", "", "Organization key (default: from report or configuration)")
	cmd.Flags().StringVar(&req.SubmitterLogin, "submitter", "", "Submitter login")

	return cmd
}

// readReport возвращает zip-архив отчёта и его метаданные (для директории).
func readReport(fsys afero.Fs, path string) ([]byte, *report.Metadata, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("report %s: %w", path, err)
	}

	if !info.IsDir() {
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("read report %s: %w", path, err)
		}
		return data, nil, nil
	}

	md, err := report.NewDir(fsys, path).ReadMetadata()
	if err != nil {
		return nil, nil, err
	}
	data, err := report.Pack(fsys, path)
	if err != nil {
		return nil, nil, err
	}
	return data, md, nil
}
