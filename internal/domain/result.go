package domain

// TaskResult - итог задачи, записываемый последним шагом.
type TaskResult struct {
	AnalysisUUID    string `json:"analysis_uuid"`
	ProjectUUID     string `json:"project_uuid"`
	ProjectKey      string `json:"project_key"`
	QualityGateID   int64  `json:"quality_gate_id"`
	QualityGateName string `json:"quality_gate_name"`
	Components      int    `json:"components"`
	ActiveRules     int    `json:"active_rules"`
	Incremental     bool   `json:"incremental"`
	Summary         string `json:"summary"`
}
