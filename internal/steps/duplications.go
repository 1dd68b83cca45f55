package steps

import (
	"context"
	"fmt"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/report"
)

// DuplicationMeasuresStep - запись каталога, выбирающая полный или
// инкрементальный расчёт дублирования по режиму анализа.
type DuplicationMeasuresStep struct {
	*pipeline.ModeDispatch
}

// NewDuplicationMeasuresStep создаёт шаг из двух стратегий.
func NewDuplicationMeasuresStep(full, incremental pipeline.Step) *DuplicationMeasuresStep {
	return &DuplicationMeasuresStep{
		ModeDispatch: pipeline.NewModeDispatch("Compute duplication measures", full, incremental),
	}
}

// FullDuplicationMeasuresStep считает дублирование всех файлов по отчёту.
type FullDuplicationMeasuresStep struct{}

// NewFullDuplicationMeasuresStep создаёт стратегию.
func NewFullDuplicationMeasuresStep() *FullDuplicationMeasuresStep {
	return &FullDuplicationMeasuresStep{}
}

// Description возвращает описание стратегии.
func (s *FullDuplicationMeasuresStep) Description() string {
	return "Compute duplication measures (full)"
}

// Execute выполняет стратегию.
func (s *FullDuplicationMeasuresStep) Execute(_ context.Context, tc *analysis.TaskContext) error {
	root, byFile, err := loadDuplicationInput(tc)
	if err != nil {
		return err
	}

	files := make(map[string]domain.DuplicationMeasure)
	for _, f := range root.Files() {
		m, err := fileDuplication(f, byFile[f.Ref])
		if err != nil {
			return err
		}
		files[f.Key] = m
	}

	return tc.Duplications.Set(aggregate(root, files))
}

// IncrementalDuplicationMeasuresStep пересчитывает только изменённые
// файлы, для неизменённых берёт показатели предыдущего анализа.
type IncrementalDuplicationMeasuresStep struct {
	measures MeasureStore
}

// NewIncrementalDuplicationMeasuresStep создаёт стратегию.
func NewIncrementalDuplicationMeasuresStep(measures MeasureStore) *IncrementalDuplicationMeasuresStep {
	return &IncrementalDuplicationMeasuresStep{measures: measures}
}

// Description возвращает описание стратегии.
func (s *IncrementalDuplicationMeasuresStep) Description() string {
	return "Compute duplication measures (incremental)"
}

// Execute выполняет стратегию.
func (s *IncrementalDuplicationMeasuresStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	root, byFile, err := loadDuplicationInput(tc)
	if err != nil {
		return err
	}
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}

	previous, err := s.measures.LastDuplications(ctx, md.Project.UUID)
	if err != nil {
		return fmt.Errorf("load previous measures: %w", err)
	}

	files := make(map[string]domain.DuplicationMeasure)
	reused := 0
	for _, f := range root.Files() {
		if f.Status == domain.FileStatusSame {
			if m, ok := previous[f.Key]; ok {
				files[f.Key] = m
				reused++
				continue
			}
		}
		m, err := fileDuplication(f, byFile[f.Ref])
		if err != nil {
			return err
		}
		files[f.Key] = m
	}

	tc.Logger.Debug("incremental duplication measures",
		"files", len(files),
		"reused", reused,
	)

	return tc.Duplications.Set(aggregate(root, files))
}

func loadDuplicationInput(tc *analysis.TaskContext) (*domain.Component, map[int][]report.Duplication, error) {
	root, err := tc.Tree.Get()
	if err != nil {
		return nil, nil, err
	}
	dir, err := tc.ReportDir.Get()
	if err != nil {
		return nil, nil, err
	}

	dups, err := dir.ReadDuplications()
	if err != nil {
		return nil, nil, reportContentError(err)
	}

	byFile := make(map[int][]report.Duplication)
	for _, d := range dups {
		byFile[d.ComponentRef] = append(byFile[d.ComponentRef], d)
	}
	return root, byFile, nil
}

// fileDuplication считает показатели файла. Блок считается один раз за
// оригинал и один раз за каждую копию внутри того же файла; строки
// считаются без повторов. Диапазон вне строк файла - ошибка отчёта.
func fileDuplication(f *domain.Component, dups []report.Duplication) (domain.DuplicationMeasure, error) {
	m := domain.DuplicationMeasure{Lines: f.Lines}
	lines := make(map[int]struct{})

	mark := func(r report.TextRange) error {
		if r.StartLine < 1 || r.EndLine < r.StartLine || r.EndLine > f.Lines {
			return pipeline.NewUserError("Invalid duplication in file %s: lines %d-%d are outside of 1-%d",
				f.Path, r.StartLine, r.EndLine, f.Lines)
		}
		for l := r.StartLine; l <= r.EndLine; l++ {
			lines[l] = struct{}{}
		}
		return nil
	}

	for _, d := range dups {
		m.DuplicatedBlocks++
		if err := mark(d.Original); err != nil {
			return domain.DuplicationMeasure{}, err
		}
		for _, dup := range d.Duplicates {
			if dup.OtherFileRef == 0 || dup.OtherFileRef == f.Ref {
				m.DuplicatedBlocks++
				if err := mark(dup.Range); err != nil {
					return domain.DuplicationMeasure{}, err
				}
			}
		}
	}

	m.DuplicatedLines = len(lines)
	if m.DuplicatedLines > 0 {
		m.DuplicatedFiles = 1
	}
	m.ComputeDensity()
	return m, nil
}

// aggregate суммирует показатели файлов вверх по дереву.
func aggregate(root *domain.Component, files map[string]domain.DuplicationMeasure) domain.DuplicationMeasures {
	out := make(domain.DuplicationMeasures, root.Count())
	root.WalkPostOrder(func(c *domain.Component) {
		if c.IsFile() {
			out[c.Key] = files[c.Key]
			return
		}
		var m domain.DuplicationMeasure
		for _, child := range c.Children {
			m.Add(out[child.Key])
		}
		m.ComputeDensity()
		out[c.Key] = m
	})
	return out
}
