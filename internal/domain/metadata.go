package domain

import (
	"strings"
	"time"
)

// PropertyQualityGate - свойство проекта с id quality gate.
const PropertyQualityGate = "sonar.qualitygate"

// BranchType - классификация ветки.
type BranchType string

const (
	// BranchTypeLong - долгоживущая ветка (включая main).
	BranchTypeLong BranchType = "LONG"

	// BranchTypeShort - короткоживущая ветка. Для неё quality gate фиксированный.
	BranchTypeShort BranchType = "SHORT"
)

// AnalysisMode - стратегия анализа, выбираемая по метаданным.
type AnalysisMode int

const (
	// ModeFull - полный анализ всех файлов.
	ModeFull AnalysisMode = iota

	// ModeIncremental - анализ только изменённых файлов.
	ModeIncremental
)

// String возвращает строковое представление режима.
func (m AnalysisMode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeIncremental:
		return "incremental"
	default:
		return "unknown"
	}
}

// Organization - организация, которой принадлежит проект.
type Organization struct {
	UUID string `json:"uuid"`
	Key  string `json:"key"`
}

// Project - анализируемый проект.
type Project struct {
	UUID string `json:"uuid"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Branch - ветка, к которой относится анализ.
type Branch struct {
	Name   string     `json:"name"`
	Type   BranchType `json:"type"`
	IsMain bool       `json:"is_main"`
}

// QProfile - профиль качества, использованный сканером для языка.
type QProfile struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Language string    `json:"language"`
	RulesAt  time.Time `json:"rules_updated_at"`
}

// Plugin - плагин сканера, участвовавший в анализе.
type Plugin struct {
	Key           string `json:"key"`
	BasePluginKey string `json:"base_plugin_key,omitempty"`
	UpdatedAt     int64  `json:"updated_at"`
}

// AnalysisMetadata - факты о задаче, загруженные из отчёта и задачи.
// Пишется одним шагом загрузки метаданных, остальными шагами только читается.
type AnalysisMetadata struct {
	AnalysisUUID            string
	AnalysisDate            time.Time
	RootComponentRef        int
	Project                 Project
	Organization            Organization
	Branch                  Branch
	Incremental             bool
	CrossProjectDuplication bool
	QProfiles               map[string]QProfile
	Plugins                 map[string]Plugin

	// Properties - настройки проекта, переданные сканером.
	Properties map[string]string
}

// Mode возвращает стратегию анализа.
func (m *AnalysisMetadata) Mode() AnalysisMode {
	if m.Incremental {
		return ModeIncremental
	}
	return ModeFull
}

// IsShortLivingBranch возвращает true для короткоживущих веток.
func (m *AnalysisMetadata) IsShortLivingBranch() bool {
	return m.Branch.Type == BranchTypeShort
}

// QualityGateProperty возвращает значение sonar.qualitygate, если оно задано и не пустое.
func (m *AnalysisMetadata) QualityGateProperty() (string, bool) {
	v, ok := m.Properties[PropertyQualityGate]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
