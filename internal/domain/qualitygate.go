package domain

// ShortLivingBranchGateID - фиксированный id quality gate для короткоживущих веток.
// Не зависит от настроек проекта.
const ShortLivingBranchGateID int64 = -1_963_456_987

// Condition - условие quality gate.
type Condition struct {
	MetricKey        string `json:"metric_key"`
	Operator         string `json:"operator"`
	ErrorThreshold   string `json:"error_threshold,omitempty"`
	WarningThreshold string `json:"warning_threshold,omitempty"`
	OnLeakPeriod     bool   `json:"on_leak_period"`
}

// QualityGate - набор условий, которым должен удовлетворять проект.
type QualityGate struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Conditions []Condition `json:"conditions"`
}
