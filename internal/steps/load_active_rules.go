package steps

import (
	"context"
	"maps"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
)

// LoadActiveRulesStep собирает активные правила из отчёта.
// Неизвестные и удалённые (REMOVED) правила пропускаются.
type LoadActiveRulesStep struct {
	rules RuleRepository
}

// NewLoadActiveRulesStep создаёт шаг.
func NewLoadActiveRulesStep(rules RuleRepository) *LoadActiveRulesStep {
	return &LoadActiveRulesStep{rules: rules}
}

// Description возвращает описание шага.
func (s *LoadActiveRulesStep) Description() string {
	return "Load quality profiles"
}

// Execute выполняет шаг.
func (s *LoadActiveRulesStep) Execute(_ context.Context, tc *analysis.TaskContext) error {
	dir, err := tc.ReportDir.Get()
	if err != nil {
		return err
	}

	declared, err := dir.ReadActiveRules()
	if err != nil {
		return reportContentError(err)
	}

	set := make(domain.ActiveRuleSet, len(declared))
	skipped := 0
	for _, ar := range declared {
		key := domain.RuleKey{Repository: ar.RuleRepository, Rule: ar.RuleKey}

		rule, ok := s.rules.FindByKey(key)
		if !ok || rule.Status == domain.RuleStatusRemoved {
			skipped++
			continue
		}

		params := make(map[string]string, len(ar.Params))
		maps.Copy(params, ar.Params)

		set[key] = domain.ActiveRule{
			RuleKey:     key,
			Severity:    ar.Severity,
			Params:      params,
			PluginKey:   rule.PluginKey,
			QProfileKey: ar.QProfileKey,
			UpdatedAt:   ar.UpdatedAt,
		}
	}

	tc.Logger.Debug("active rules loaded", "active", len(set), "skipped", skipped)

	return tc.ActiveRules.Set(set)
}
