// Package rules загружает внешний репозиторий правил из YAML.
//
//	rules:
//	  - repository: go
//	    key: S100
//	    name: Function names should comply with a naming convention
//	    status: READY
//	    severity: MINOR
//	    plugin: golang
//	    language: go
package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/Analyzer/internal/domain"
)

// Ошибки загрузки.
var (
	// ErrInvalidRule - определение правила некорректно.
	ErrInvalidRule = errors.New("invalid rule definition")

	// ErrDuplicateRule - ключ правила встречается дважды.
	ErrDuplicateRule = errors.New("duplicate rule")
)

type fileFormat struct {
	Rules []definition `yaml:"rules"`
}

type definition struct {
	Repository string `yaml:"repository"`
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	Status     string `yaml:"status"`
	Severity   string `yaml:"severity"`
	Plugin     string `yaml:"plugin"`
	Language   string `yaml:"language"`
}

// Repository - неизменяемый набор правил, безопасен для конкурентного чтения.
type Repository struct {
	rules map[domain.RuleKey]domain.Rule
}

// NewRepository создаёт репозиторий из готовых правил.
func NewRepository(rules ...domain.Rule) *Repository {
	r := &Repository{rules: make(map[domain.RuleKey]domain.Rule, len(rules))}
	for _, rule := range rules {
		r.rules[rule.Key] = rule
	}
	return r
}

// Load читает YAML-файл правил.
func Load(fsys afero.Fs, path string) (*Repository, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return Parse(data)
}

// Parse разбирает YAML-описание правил.
func Parse(data []byte) (*Repository, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	r := &Repository{rules: make(map[domain.RuleKey]domain.Rule, len(f.Rules))}
	for i, d := range f.Rules {
		rule, err := d.toRule()
		if err != nil {
			return nil, fmt.Errorf("rule #%d: %w", i+1, err)
		}
		if _, exists := r.rules[rule.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, rule.Key)
		}
		r.rules[rule.Key] = rule
	}
	return r, nil
}

func (d definition) toRule() (domain.Rule, error) {
	if d.Repository == "" || d.Key == "" {
		return domain.Rule{}, fmt.Errorf("%w: repository and key are required", ErrInvalidRule)
	}

	status := domain.RuleStatus(d.Status)
	switch status {
	case "":
		status = domain.RuleStatusReady
	case domain.RuleStatusReady, domain.RuleStatusBeta, domain.RuleStatusDeprecated, domain.RuleStatusRemoved:
	default:
		return domain.Rule{}, fmt.Errorf("%w: unknown status %q", ErrInvalidRule, d.Status)
	}

	return domain.Rule{
		Key:             domain.RuleKey{Repository: d.Repository, Rule: d.Key},
		Name:            d.Name,
		Status:          status,
		DefaultSeverity: d.Severity,
		PluginKey:       d.Plugin,
		Language:        d.Language,
	}, nil
}

// FindByKey возвращает правило по ключу.
func (r *Repository) FindByKey(key domain.RuleKey) (domain.Rule, bool) {
	rule, ok := r.rules[key]
	return rule, ok
}

// Len возвращает количество правил.
func (r *Repository) Len() int {
	return len(r.rules)
}

// All возвращает правила, отсортированные по ключу.
func (r *Repository) All() []domain.Rule {
	out := make([]domain.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}
