package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskType - тип задачи. Для каждого типа есть свой каталог шагов.
type TaskType string

// TaskTypeReport - анализ загруженного отчёта сканера.
const TaskTypeReport TaskType = "REPORT"

// Task - одна задача анализа, обрабатываемая pipeline'ом от начала до конца.
type Task struct {
	// ID - уникальный идентификатор задачи.
	ID uuid.UUID `json:"id"`

	// Type - тип задачи, определяет каталог шагов.
	Type TaskType `json:"type"`

	// ComponentUUID / ComponentKey - проект (или ветка), для которого загружен отчёт.
	// ComponentKey пустой, если проект удалён после загрузки отчёта.
	ComponentUUID string `json:"component_uuid"`
	ComponentKey  string `json:"component_key,omitempty"`

	// OrganizationUUID / OrganizationKey - организация, в которую отправлен отчёт.
	OrganizationUUID string `json:"organization_uuid"`
	OrganizationKey  string `json:"organization_key"`

	// SubmitterLogin - кто загрузил отчёт.
	SubmitterLogin string `json:"submitter_login,omitempty"`

	// Status - текущий статус задачи.
	Status TaskStatus `json:"status"`

	// ExecutionCount - сколько раз задача бралась в работу.
	ExecutionCount int `json:"execution_count"`

	// WorkerID - воркер, который выполняет задачу.
	WorkerID string `json:"worker_id,omitempty"`

	// AnalysisUUID - идентификатор анализа, созданного задачей.
	AnalysisUUID string `json:"analysis_uuid,omitempty"`

	// ErrorMessage / ErrorType - причина остановки pipeline'а.
	ErrorMessage string    `json:"error_message,omitempty"`
	ErrorType    ErrorType `json:"error_type,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewReportTask создаёт задачу анализа отчёта в статусе PENDING.
func NewReportTask(componentUUID, componentKey, orgUUID, orgKey, submitter string) *Task {
	return &Task{
		ID:               uuid.New(),
		Type:             TaskTypeReport,
		ComponentUUID:    componentUUID,
		ComponentKey:     componentKey,
		OrganizationUUID: orgUUID,
		OrganizationKey:  orgKey,
		SubmitterLogin:   submitter,
		Status:           TaskStatusPending,
		CreatedAt:        time.Now().UTC(),
	}
}

// Duration возвращает продолжительность выполнения.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.FinishedAt == nil {
		return 0
	}
	return t.FinishedAt.Sub(*t.StartedAt)
}

// IsFinished возвращает true, если задача завершена.
func (t *Task) IsFinished() bool {
	return t.Status.IsTerminal()
}

// MarkInProgress переводит задачу в IN_PROGRESS.
func (t *Task) MarkInProgress(workerID string) {
	now := time.Now().UTC()
	t.Status = TaskStatusInProgress
	t.StartedAt = &now
	t.FinishedAt = nil
	t.WorkerID = workerID
	t.ExecutionCount++
}

// MarkSucceeded переводит задачу в SUCCESS.
func (t *Task) MarkSucceeded(analysisUUID string) {
	now := time.Now().UTC()
	t.Status = TaskStatusSuccess
	t.FinishedAt = &now
	t.AnalysisUUID = analysisUUID
	t.ErrorMessage = ""
	t.ErrorType = ""
}

// MarkFailed переводит задачу в FAILED.
func (t *Task) MarkFailed(message string, errType ErrorType) {
	now := time.Now().UTC()
	t.Status = TaskStatusFailed
	t.FinishedAt = &now
	t.ErrorMessage = message
	t.ErrorType = errType
}

// MarkPending возвращает задачу в очередь. Выполнение начнётся заново.
func (t *Task) MarkPending() {
	t.Status = TaskStatusPending
	t.StartedAt = nil
	t.FinishedAt = nil
	t.WorkerID = ""
}

// MarkCanceled переводит задачу в CANCELED.
func (t *Task) MarkCanceled() {
	now := time.Now().UTC()
	t.Status = TaskStatusCanceled
	t.FinishedAt = &now
}
