package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskInputRepo - архивы отчётов задач (ce_task_input).
type TaskInputRepo struct {
	pool *pgxpool.Pool
}

// NewTaskInputRepo создаёт новый TaskInputRepo.
func NewTaskInputRepo(pool *pgxpool.Pool) *TaskInputRepo {
	return &TaskInputRepo{pool: pool}
}

// OpenReport возвращает архив отчёта задачи.
func (r *TaskInputRepo) OpenReport(ctx context.Context, taskID uuid.UUID) (io.ReadCloser, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT input_data FROM ce_task_input WHERE task_id = $1`, taskID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("input of task %s: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select task input: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// PurgeFinishedBefore удаляет архивы задач, завершённых раньше before.
func (r *TaskInputRepo) PurgeFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM ce_task_input i
		USING ce_queue q
		WHERE i.task_id = q.id
		  AND q.status IN ('SUCCESS', 'FAILED', 'CANCELED')
		  AND q.finished_at < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("purge task inputs: %w", err)
	}
	return result.RowsAffected(), nil
}
