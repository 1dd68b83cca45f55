package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Analyzer/internal/domain"
)

const taskColumns = `id, task_type, component_uuid, component_key, organization_uuid, organization_key,
		       submitter_login, status, execution_count, worker_id, analysis_uuid, error_message, error_type,
		       created_at, started_at, finished_at`

// execer - общий интерфейс pgxpool.Pool и pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// TaskRepo - репозиторий очереди задач (ce_queue).
type TaskRepo struct {
	pool *pgxpool.Pool
}

// NewTaskRepo создаёт новый TaskRepo.
func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

// TaskFilter - фильтр списка задач.
type TaskFilter struct {
	Status       *domain.TaskStatus
	ComponentKey string
	Limit        int
	Offset       int
}

// Submit создаёт задачу вместе с архивом отчёта в одной транзакции.
func (r *TaskRepo) Submit(ctx context.Context, task *domain.Task, reportZip []byte) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertTask(ctx, tx, task); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO ce_task_input (task_id, input_data, created_at)
			VALUES ($1, $2, $3)
		`, task.ID, reportZip, task.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert task input: %w", err)
		}
		return nil
	})
}

// Create создаёт задачу без отчёта.
func (r *TaskRepo) Create(ctx context.Context, task *domain.Task) error {
	return insertTask(ctx, r.pool, task)
}

func insertTask(ctx context.Context, db execer, task *domain.Task) error {
	query := `
		INSERT INTO ce_queue (id, task_type, component_uuid, component_key, organization_uuid,
		                      organization_key, submitter_login, status, execution_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.Exec(ctx, query,
		task.ID,
		task.Type,
		task.ComponentUUID,
		nullString(task.ComponentKey),
		task.OrganizationUUID,
		task.OrganizationKey,
		nullString(task.SubmitterLogin),
		task.Status,
		task.ExecutionCount,
		task.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: task %s", ErrAlreadyExists, task.ID)
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID возвращает задачу по ID.
func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM ce_queue WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

// List возвращает задачи по фильтру, новые первыми.
func (r *TaskRepo) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	query := `
		SELECT ` + taskColumns + `
		FROM ce_queue
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR component_key = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, status, nullString(filter.ComponentKey), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

// ListPending возвращает самые старые задачи в статусе PENDING.
func (r *TaskRepo) ListPending(ctx context.Context, limit int) ([]domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM ce_queue
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return collectTasks(rows)
}

// Claim атомарно переводит PENDING задачу в IN_PROGRESS.
// Если задачу уже забрал другой воркер или она отменена, возвращает ErrInvalidState.
func (r *TaskRepo) Claim(ctx context.Context, id uuid.UUID, workerID string) (*domain.Task, error) {
	query := `
		UPDATE ce_queue
		SET status = 'IN_PROGRESS', worker_id = $2, started_at = $3, finished_at = NULL,
		    execution_count = execution_count + 1
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + taskColumns
	task, err := scanTask(r.pool.QueryRow(ctx, query, id, workerID, time.Now().UTC()))
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: task %s is not pending", ErrInvalidState, id)
	}
	return task, err
}

// Update сохраняет итог задачи, взятой воркером claimedBy.
// Если задача уже не в IN_PROGRESS у этого воркера (например, её сбросил
// cleaner), возвращает ErrClaimLost и ничего не меняет.
func (r *TaskRepo) Update(ctx context.Context, task *domain.Task, claimedBy string) error {
	query := `
		UPDATE ce_queue
		SET status = $2, execution_count = $3, worker_id = $4, analysis_uuid = $5,
		    error_message = $6, error_type = $7, started_at = $8, finished_at = $9
		WHERE id = $1 AND status = 'IN_PROGRESS' AND worker_id = $10
	`
	result, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Status,
		task.ExecutionCount,
		nullString(task.WorkerID),
		nullString(task.AnalysisUUID),
		nullString(task.ErrorMessage),
		nullString(string(task.ErrorType)),
		task.StartedAt,
		task.FinishedAt,
		claimedBy,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	current, err := r.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: task %s is %s (worker %q)", ErrClaimLost, task.ID, current.Status, current.WorkerID)
}

// Cancel отменяет задачу, которая ещё не взята в работу.
func (r *TaskRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE ce_queue SET status = 'CANCELED', finished_at = $2
		WHERE id = $1 AND status = 'PENDING'
	`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cancel task: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	task, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: task %s is %s", ErrInvalidState, id, task.Status)
}

// ResetStale возвращает в PENDING задачи, которые находятся в IN_PROGRESS
// дольше olderThan. Выполнение такой задачи начинается заново.
func (r *TaskRepo) ResetStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE ce_queue
		SET status = 'PENDING', worker_id = NULL, started_at = NULL
		WHERE status = 'IN_PROGRESS' AND started_at < $1
	`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("reset stale tasks: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountByStatus возвращает количество задач по статусам.
func (r *TaskRepo) CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM ce_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.TaskStatus]int)
	for rows.Next() {
		var (
			status domain.TaskStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// --- Helpers ---

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// scanTask сканирует строку ce_queue. pgx.Rows тоже реализует pgx.Row.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var componentKey, submitter, workerID, analysisUUID, errMessage, errType *string

	err := row.Scan(
		&task.ID,
		&task.Type,
		&task.ComponentUUID,
		&componentKey,
		&task.OrganizationUUID,
		&task.OrganizationKey,
		&submitter,
		&task.Status,
		&task.ExecutionCount,
		&workerID,
		&analysisUUID,
		&errMessage,
		&errType,
		&task.CreatedAt,
		&task.StartedAt,
		&task.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.ComponentKey = derefString(componentKey)
	task.SubmitterLogin = derefString(submitter)
	task.WorkerID = derefString(workerID)
	task.AnalysisUUID = derefString(analysisUUID)
	task.ErrorMessage = derefString(errMessage)
	task.ErrorType = domain.ErrorType(derefString(errType))

	return &task, nil
}
