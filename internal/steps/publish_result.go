package steps

import (
	"context"
	"fmt"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
)

// PublishTaskResultStep записывает итог задачи. Воркер читает его после pipeline'а.
type PublishTaskResultStep struct{}

// NewPublishTaskResultStep создаёт шаг.
func NewPublishTaskResultStep() *PublishTaskResultStep {
	return &PublishTaskResultStep{}
}

// Description возвращает описание шага.
func (s *PublishTaskResultStep) Description() string {
	return "Publish task results"
}

// Execute выполняет шаг.
func (s *PublishTaskResultStep) Execute(_ context.Context, tc *analysis.TaskContext) error {
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}
	root, err := tc.Tree.Get()
	if err != nil {
		return err
	}
	gate, err := tc.QualityGate.Get()
	if err != nil {
		return err
	}
	rules, err := tc.ActiveRules.Get()
	if err != nil {
		return err
	}

	result := &domain.TaskResult{
		AnalysisUUID:    md.AnalysisUUID,
		ProjectUUID:     md.Project.UUID,
		ProjectKey:      md.Project.Key,
		QualityGateID:   gate.ID,
		QualityGateName: gate.Name,
		Components:      root.Count(),
		ActiveRules:     len(rules),
		Incremental:     md.Incremental,
	}
	result.Summary = fmt.Sprintf("%s analysis of %s: %d components, %d active rules, quality gate %q",
		md.Mode(), md.Project.Key, result.Components, result.ActiveRules, gate.Name)

	if tc.Duplications.IsPresent() {
		measures, _ := tc.Duplications.Get()
		if m, ok := measures[root.Key]; ok {
			result.Summary += fmt.Sprintf(", %.1f%% duplicated lines", m.Density)
		}
	}

	return tc.Result.Set(result)
}
