package domain

import (
	"fmt"
	"strings"
	"time"
)

// RuleKey - ключ правила: репозиторий и ключ правила внутри него.
type RuleKey struct {
	Repository string `json:"repository" yaml:"repository"`
	Rule       string `json:"rule" yaml:"rule"`
}

// String возвращает ключ в формате "repository:rule".
func (k RuleKey) String() string {
	return k.Repository + ":" + k.Rule
}

// ParseRuleKey парсит строку "repository:rule".
func ParseRuleKey(s string) (RuleKey, error) {
	repo, rule, ok := strings.Cut(s, ":")
	if !ok || repo == "" || rule == "" {
		return RuleKey{}, fmt.Errorf("invalid rule key %q", s)
	}
	return RuleKey{Repository: repo, Rule: rule}, nil
}

// RuleStatus - статус правила в репозитории.
type RuleStatus string

const (
	RuleStatusReady      RuleStatus = "READY"
	RuleStatusBeta       RuleStatus = "BETA"
	RuleStatusDeprecated RuleStatus = "DEPRECATED"
	RuleStatusRemoved    RuleStatus = "REMOVED"
)

// Rule - правило из внешнего репозитория правил.
type Rule struct {
	Key             RuleKey
	Name            string
	Status          RuleStatus
	DefaultSeverity string
	PluginKey       string
	Language        string
}

// ActiveRule - правило, активированное в профиле качества.
type ActiveRule struct {
	RuleKey     RuleKey
	Severity    string
	Params      map[string]string
	PluginKey   string
	QProfileKey string
	UpdatedAt   time.Time
}

// ActiveRuleSet - активные правила по ключу.
type ActiveRuleSet map[RuleKey]ActiveRule

// Get возвращает активное правило по ключу.
func (s ActiveRuleSet) Get(key RuleKey) (ActiveRule, bool) {
	r, ok := s[key]
	return r, ok
}
