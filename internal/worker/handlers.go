package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/mq"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/repo"
)

// handleTaskPending обрабатывает уведомление из очереди ce.tasks.pending.
func (w *Worker) handleTaskPending(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.TaskPendingPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse task.pending payload", "error", err)
		return err
	}

	w.logger.Debug("received task.pending event",
		"task_id", payload.TaskID,
		"task_type", payload.TaskType,
	)

	if err := w.processTask(ctx, payload.TaskID); err != nil {
		// Задачу уже забрал poll или другой воркер - подтверждаем.
		if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrTaskNotPending) {
			w.logger.Debug("task not processed", "task_id", payload.TaskID, "reason", err)
			return nil
		}
		return err
	}

	return nil
}

// processTask забирает задачу, выполняет её pipeline и сохраняет итог.
func (w *Worker) processTask(ctx context.Context, taskID uuid.UUID) error {
	if err := w.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer w.slots.Release(1)

	task, err := w.tasks.Claim(ctx, taskID, w.workerID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		case errors.Is(err, repo.ErrInvalidState):
			return fmt.Errorf("%w: %s", ErrTaskNotPending, taskID)
		default:
			return fmt.Errorf("claim task: %w", err)
		}
	}

	w.metrics.TaskStarted()

	logger := w.logger.With("task_id", task.ID.String(), "task_type", task.Type)
	logger.Info("task started",
		"component_key", task.ComponentKey,
		"execution_count", task.ExecutionCount,
	)

	execErr := w.run(ctx, task)
	w.finish(ctx, task, execErr)

	// Итог сохраняем даже при остановке воркера.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := w.tasks.Update(saveCtx, task, w.workerID); err != nil {
		w.metrics.TaskFinished(task.Type, task.Status)
		// Задачу сбросили и, возможно, уже выполняет другой воркер.
		if errors.Is(err, repo.ErrClaimLost) {
			logger.Warn("task claim lost, result discarded",
				"status", task.Status,
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("update task %s to %s: %w", task.ID, task.Status, err)
	}
	w.metrics.TaskFinished(task.Type, task.Status)

	logger.Info("task finished",
		"status", task.Status,
		"error_type", task.ErrorType,
		"duration_ms", task.Duration().Milliseconds(),
	)

	if task.IsFinished() {
		w.publishCompletion(saveCtx, task)
	}
	return nil
}

// run выполняет pipeline задачи в собственном TaskContext.
func (w *Worker) run(ctx context.Context, task *domain.Task) (err error) {
	executor, ok := w.executors[task.Type]
	if !ok {
		return fmt.Errorf("%w %s", ErrNoPipeline, task.Type)
	}

	if w.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, w.taskTimeout, ErrTaskTimeout)
		defer cancel()
	}

	tc := analysis.NewTaskContext(task, w.logger)
	defer func() {
		if closeErr := tc.Close(); closeErr != nil {
			tc.Logger.Warn("failed to remove report directory", "error", closeErr)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStepPanic, r)
		}
	}()

	if err := executor.Execute(ctx, tc); err != nil {
		// Отказ по вине пользователя остаётся USER, даже если таймаут
		// сработал одновременно с ним.
		if pipeline.KindOf(err) == pipeline.KindUser {
			return err
		}
		if errors.Is(context.Cause(ctx), ErrTaskTimeout) {
			return fmt.Errorf("%w after %s: %w", ErrTaskTimeout, w.taskTimeout, err)
		}
		return err
	}

	if tc.Result.IsPresent() {
		result, err := tc.Result.Get()
		if err != nil {
			return err
		}
		if result != nil {
			task.AnalysisUUID = result.AnalysisUUID
		}
	}
	return nil
}

// finish переводит задачу в итоговый статус по категории ошибки.
//
// Отмена из-за остановки воркера возвращает задачу в очередь, таймаут
// задачи считается дефектом.
func (w *Worker) finish(ctx context.Context, task *domain.Task, err error) {
	if errors.Is(err, ErrTaskTimeout) {
		task.MarkFailed(err.Error(), domain.ErrorTypeDefect)
		return
	}

	switch pipeline.KindOf(err) {
	case pipeline.KindNone:
		task.MarkSucceeded(task.AnalysisUUID)
	case pipeline.KindUser:
		task.MarkFailed(err.Error(), domain.ErrorTypeUser)
	case pipeline.KindCanceled:
		if ctx.Err() != nil {
			task.MarkPending()
			return
		}
		task.MarkFailed(err.Error(), domain.ErrorTypeDefect)
	default:
		task.MarkFailed(err.Error(), domain.ErrorTypeDefect)
	}
}

// publishCompletion публикует событие task.completed.
// Ошибка публикации не критична: итог уже сохранён в БД.
func (w *Worker) publishCompletion(ctx context.Context, task *domain.Task) {
	if w.notifier == nil {
		return
	}

	if err := w.notifier.PublishTaskCompleted(ctx, task); err != nil {
		w.logger.Warn("failed to publish task.completed",
			"task_id", task.ID,
			"error", err,
		)
	}
}
