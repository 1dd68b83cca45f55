package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Analyzer/internal/domain"
)

// TaskResponse - ответ с задачей.
type TaskResponse struct {
	ID              uuid.UUID         `json:"id"`
	Type            domain.TaskType   `json:"type"`
	Status          domain.TaskStatus `json:"status"`
	ComponentUUID   string            `json:"component_uuid,omitempty"`
	ComponentKey    string            `json:"component_key,omitempty"`
	OrganizationKey string            `json:"organization_key"`
	SubmitterLogin  string            `json:"submitter_login,omitempty"`
	AnalysisUUID    string            `json:"analysis_uuid,omitempty"`
	ErrorType       domain.ErrorType  `json:"error_type,omitempty"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	ExecutionCount  int               `json:"execution_count"`
	WorkerID        string            `json:"worker_id,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	FinishedAt      *time.Time        `json:"finished_at,omitempty"`
	ExecutionTimeMs *int64            `json:"execution_time_ms,omitempty"`
}

// TaskFromDomain конвертирует domain.Task в TaskResponse.
func TaskFromDomain(t domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:              t.ID,
		Type:            t.Type,
		Status:          t.Status,
		ComponentUUID:   t.ComponentUUID,
		ComponentKey:    t.ComponentKey,
		OrganizationKey: t.OrganizationKey,
		SubmitterLogin:  t.SubmitterLogin,
		AnalysisUUID:    t.AnalysisUUID,
		ErrorType:       t.ErrorType,
		ErrorMessage:    t.ErrorMessage,
		ExecutionCount:  t.ExecutionCount,
		WorkerID:        t.WorkerID,
		SubmittedAt:     t.CreatedAt,
		StartedAt:       t.StartedAt,
		FinishedAt:      t.FinishedAt,
	}
	if t.StartedAt != nil && t.FinishedAt != nil {
		ms := t.Duration().Milliseconds()
		resp.ExecutionTimeMs = &ms
	}
	return resp
}

// SubmitResponse - ответ на загрузку отчёта.
type SubmitResponse struct {
	TaskID       uuid.UUID    `json:"task_id"`
	ProjectKey   string       `json:"project_key"`
	Task         TaskResponse `json:"task"`
	Notification string       `json:"notification,omitempty"`
}

// ActivityStatusResponse - количество задач в очереди по статусам.
type ActivityStatusResponse struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Success    int `json:"success"`
	Failed     int `json:"failed"`
	Canceled   int `json:"canceled"`
}

// ActivityStatusFromCounts конвертирует счётчики репозитория в ответ.
func ActivityStatusFromCounts(counts map[domain.TaskStatus]int) ActivityStatusResponse {
	return ActivityStatusResponse{
		Pending:    counts[domain.TaskStatusPending],
		InProgress: counts[domain.TaskStatusInProgress],
		Success:    counts[domain.TaskStatusSuccess],
		Failed:     counts[domain.TaskStatusFailed],
		Canceled:   counts[domain.TaskStatusCanceled],
	}
}
