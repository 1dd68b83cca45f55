package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/repo"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 1000
)

// GetTask возвращает задачу по ID.
// GET /api/ce/task/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeTask(w, *task)
}

// CancelTask отменяет задачу, которая ещё не взята в работу.
// POST /api/ce/task/{id}/cancel
func (h *Handler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.tasks.Cancel(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("task canceled", "task_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Activity возвращает список задач с фильтрацией.
// GET /api/ce/activity?status=...&component=...&limit=...&offset=...
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	filter, err := activityFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeActivity(w, tasks, filter)
}

// activityFilter разбирает status, component, limit и offset.
func activityFilter(r *http.Request) (repo.TaskFilter, error) {
	q := r.URL.Query()
	filter := repo.TaskFilter{
		ComponentKey: q.Get("component"),
		Limit:        defaultActivityLimit,
	}

	if v := q.Get("status"); v != "" {
		status, ok := domain.ParseTaskStatus(v)
		if !ok {
			return filter, badRequest("invalid status: %s", v)
		}
		filter.Status = &status
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxActivityLimit {
			return filter, badRequest("limit must be between 1 and %d", maxActivityLimit)
		}
		filter.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, badRequest("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

// ActivityStatus возвращает количество задач по статусам.
// GET /api/ce/activity_status
func (h *Handler) ActivityStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.tasks.CountByStatus(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeActivityStatus(w, counts)
}

func taskID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, badRequest("invalid task id")
	}
	return id, nil
}
