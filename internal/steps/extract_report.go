package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/report"
	"github.com/shaiso/Analyzer/internal/repo"
)

// ExtractReportStep распаковывает отчёт задачи в workDir/<task id>.
type ExtractReportStep struct {
	source  ReportSource
	fs      afero.Fs
	workDir string
}

// NewExtractReportStep создаёт шаг.
func NewExtractReportStep(source ReportSource, fs afero.Fs, workDir string) *ExtractReportStep {
	return &ExtractReportStep{source: source, fs: fs, workDir: workDir}
}

// Description возвращает описание шага.
func (s *ExtractReportStep) Description() string {
	return "Extract report"
}

// Execute выполняет шаг.
func (s *ExtractReportStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	taskID := tc.Task.ID

	rc, err := s.source.OpenReport(ctx, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("analysis report of task %s: %w: %w", taskID, ErrReportMissing, err)
		}
		return fmt.Errorf("open report of task %s: %w", taskID, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read report of task %s: %w", taskID, err)
	}

	dest := filepath.Join(s.workDir, taskID.String())
	n, err := report.Extract(s.fs, bytes.NewReader(data), int64(len(data)), dest)
	if err != nil {
		_ = s.fs.RemoveAll(dest)
		return fmt.Errorf("extract report of task %s: %w", taskID, err)
	}

	tc.Logger.Debug("report extracted", "dir", dest, "files", n, "bytes", len(data))

	return tc.ReportDir.Set(report.NewDir(s.fs, dest))
}
