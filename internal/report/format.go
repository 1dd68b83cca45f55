package report

import "time"

// Имена файлов отчёта.
const (
	FileMetadata     = "metadata.json"
	FileComponents   = "components.json"
	FileActiveRules  = "active_rules.json"
	FileDuplications = "duplications.json"
)

// Metadata - содержимое metadata.json.
type Metadata struct {
	AnalysisDate            time.Time           `json:"analysis_date"`
	ProjectKey              string              `json:"project_key"`
	OrganizationKey         string              `json:"organization_key,omitempty"`
	BranchName              string              `json:"branch_name,omitempty"`
	BranchType              string              `json:"branch_type,omitempty"`
	RootComponentRef        int                 `json:"root_component_ref"`
	Incremental             bool                `json:"incremental"`
	CrossProjectDuplication bool                `json:"cross_project_duplication_activated"`
	QProfiles               map[string]QProfile `json:"qprofiles_per_language,omitempty"`
	Plugins                 map[string]Plugin   `json:"plugins_by_key,omitempty"`
	Properties              map[string]string   `json:"properties,omitempty"`
}

// QProfile - профиль качества в metadata.json.
type QProfile struct {
	Key            string    `json:"key"`
	Name           string    `json:"name"`
	Language       string    `json:"language"`
	RulesUpdatedAt time.Time `json:"rules_updated_at"`
}

// Plugin - плагин в metadata.json.
type Plugin struct {
	Key           string `json:"key"`
	BasePluginKey string `json:"base_plugin_key,omitempty"`
	UpdatedAt     int64  `json:"updated_at"`
}

// Component - элемент components.json.
type Component struct {
	Ref       int    `json:"ref"`
	Type      string `json:"type"`
	Key       string `json:"key,omitempty"`
	Name      string `json:"name,omitempty"`
	Path      string `json:"path,omitempty"`
	Language  string `json:"language,omitempty"`
	Lines     int    `json:"lines,omitempty"`
	Status    string `json:"status,omitempty"`
	ChildRefs []int  `json:"child_refs,omitempty"`
}

// ActiveRule - элемент active_rules.json.
type ActiveRule struct {
	RuleRepository string            `json:"rule_repository"`
	RuleKey        string            `json:"rule_key"`
	Severity       string            `json:"severity"`
	Params         map[string]string `json:"params,omitempty"`
	QProfileKey    string            `json:"qprofile_key,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// TextRange - диапазон строк (включительно).
type TextRange struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Duplicate - копия блока. OtherFileRef == 0 означает тот же файл.
type Duplicate struct {
	OtherFileRef int       `json:"other_file_ref,omitempty"`
	Range        TextRange `json:"range"`
}

// Duplication - элемент duplications.json: исходный блок файла и его копии.
type Duplication struct {
	ComponentRef int         `json:"component_ref"`
	Original     TextRange   `json:"original"`
	Duplicates   []Duplicate `json:"duplicates"`
}
