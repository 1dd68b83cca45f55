package steps

import (
	"context"
	"fmt"

	"github.com/shaiso/Analyzer/internal/analysis"
)

// PersistComponentsStep сохраняет дерево компонентов.
type PersistComponentsStep struct {
	store ComponentStore
}

// NewPersistComponentsStep создаёт шаг.
func NewPersistComponentsStep(store ComponentStore) *PersistComponentsStep {
	return &PersistComponentsStep{store: store}
}

// Description возвращает описание шага.
func (s *PersistComponentsStep) Description() string {
	return "Persist components"
}

// Execute выполняет шаг.
func (s *PersistComponentsStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}
	root, err := tc.Tree.Get()
	if err != nil {
		return err
	}

	if err := s.store.Upsert(ctx, md.Project.UUID, root); err != nil {
		return fmt.Errorf("persist components: %w", err)
	}
	return nil
}

// PersistMeasuresStep сохраняет показатели анализа.
type PersistMeasuresStep struct {
	store MeasureStore
}

// NewPersistMeasuresStep создаёт шаг.
func NewPersistMeasuresStep(store MeasureStore) *PersistMeasuresStep {
	return &PersistMeasuresStep{store: store}
}

// Description возвращает описание шага.
func (s *PersistMeasuresStep) Description() string {
	return "Persist measures"
}

// Execute выполняет шаг.
func (s *PersistMeasuresStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}
	root, err := tc.Tree.Get()
	if err != nil {
		return err
	}
	measures, err := tc.Duplications.Get()
	if err != nil {
		return err
	}

	if err := s.store.SaveDuplications(ctx, md, root, measures); err != nil {
		return fmt.Errorf("persist measures: %w", err)
	}
	return nil
}

// IndexAnalysisStep синхронизирует поисковый индекс проекта.
type IndexAnalysisStep struct {
	indexer ProjectIndexer
}

// NewIndexAnalysisStep создаёт шаг.
func NewIndexAnalysisStep(indexer ProjectIndexer) *IndexAnalysisStep {
	return &IndexAnalysisStep{indexer: indexer}
}

// Description возвращает описание шага.
func (s *IndexAnalysisStep) Description() string {
	return "Index analysis"
}

// Execute выполняет шаг.
func (s *IndexAnalysisStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}

	if err := s.indexer.Index(ctx, md.Project.UUID); err != nil {
		return fmt.Errorf("index project %s: %w", md.Project.Key, err)
	}
	return nil
}
