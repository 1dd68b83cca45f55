package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/queue"
	"github.com/shaiso/Analyzer/internal/repo"
)

// ErrorCode - машинный код ошибки CE API.
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalidState  ErrorCode = "INVALID_STATE"
	ErrCodeTooLarge      ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse - {"error": {"code": ..., "message": ...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail - код и текст ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Paging - окно выборки activity.
type Paging struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// dataResponse - {"data": ...}, для activity ещё и paging.
type dataResponse struct {
	Data   any     `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// requestError - ошибка разбора запроса, уходит клиенту как есть.
type requestError struct {
	status int
	code   ErrorCode
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf(format, args...)}
}

func reportTooLarge(limit int64) error {
	return &requestError{http.StatusRequestEntityTooLarge, ErrCodeTooLarge, fmt.Sprintf("report exceeds %d bytes", limit)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeTask(w http.ResponseWriter, t domain.Task) {
	writeJSON(w, http.StatusOK, dataResponse{Data: TaskFromDomain(t)})
}

func writeActivity(w http.ResponseWriter, tasks []domain.Task, filter repo.TaskFilter) {
	items := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		items[i] = TaskFromDomain(t)
	}
	writeJSON(w, http.StatusOK, dataResponse{
		Data:   items,
		Paging: &Paging{Limit: filter.Limit, Offset: filter.Offset, Count: len(items)},
	})
}

func writeActivityStatus(w http.ResponseWriter, counts map[domain.TaskStatus]int) {
	writeJSON(w, http.StatusOK, dataResponse{Data: ActivityStatusFromCounts(counts)})
}

// writeSubmitted отвечает 201 с новой задачей. Если воркеры не получили
// уведомление, ответ говорит, что задачу заберёт polling.
func writeSubmitted(w http.ResponseWriter, result *queue.Result) {
	resp := SubmitResponse{
		TaskID:     result.Task.ID,
		ProjectKey: result.Task.ComponentKey,
		Task:       TaskFromDomain(*result.Task),
	}
	if result.NotifyErr != nil {
		resp.Notification = "task saved, workers will pick it up by polling"
	}
	writeJSON(w, http.StatusCreated, dataResponse{Data: resp})
}

// writeError отвечает ошибкой по её виду. Неизвестные ошибки пишутся в
// лог и отдаются клиенту как 500 без деталей.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code, msg := classifyError(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}

func classifyError(err error) (int, ErrorCode, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.code, reqErr.msg
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "task not found"
	case errors.Is(err, repo.ErrInvalidState):
		return http.StatusUnprocessableEntity, ErrCodeInvalidState, err.Error()
	case errors.Is(err, queue.ErrProjectKeyRequired), errors.Is(err, queue.ErrEmptyReport):
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	}
}
