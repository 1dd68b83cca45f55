package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/mq"
	"github.com/shaiso/Analyzer/internal/pipeline"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 20
	defaultConcurrency  = 1
)

// TaskStore - очередь задач в БД.
type TaskStore interface {
	ListPending(ctx context.Context, limit int) ([]domain.Task, error)
	Claim(ctx context.Context, id uuid.UUID, workerID string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task, claimedBy string) error
}

// Notifier сообщает о завершении задачи.
type Notifier interface {
	PublishTaskCompleted(ctx context.Context, task *domain.Task) error
}

// Metrics - счётчики задач.
type Metrics interface {
	TaskStarted()
	TaskFinished(taskType domain.TaskType, status domain.TaskStatus)
}

type nopMetrics struct{}

func (nopMetrics) TaskStarted() {}
func (nopMetrics) TaskFinished(domain.TaskType, domain.TaskStatus) {}

// Worker выполняет задачи анализа.
//
// Задачи приходят двумя путями: уведомление task.pending из RabbitMQ и
// периодический опрос БД. Оба пути сходятся в processTask, который
// атомарно забирает задачу, поэтому одна задача не выполняется дважды.
// Несколько воркеров могут работать с одной очередью.
type Worker struct {
	tasks     TaskStore
	notifier  Notifier
	conn      *mq.Connection
	executors map[domain.TaskType]*pipeline.Executor
	metrics   Metrics

	workerID     string
	concurrency  int
	pollInterval time.Duration
	batchSize    int
	taskTimeout  time.Duration

	// slots ограничивает общее число задач в работе (consumer + poll).
	slots *semaphore.Weighted

	consumer   *mq.Consumer
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config - конфигурация Worker.
type Config struct {
	Tasks TaskStore

	// Notifier и Conn опциональны: без них воркер работает только на polling.
	Notifier Notifier
	Conn     *mq.Connection

	// Executors - собранные pipeline'ы по типу задачи.
	Executors map[domain.TaskType]*pipeline.Executor

	Metrics Metrics

	WorkerID     string
	Concurrency  int           // задач одновременно (default: 1)
	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // задач за один poll (default: 20)
	TaskTimeout  time.Duration // 0 - без ограничения

	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var metrics Metrics = nopMetrics{}
	if cfg.Metrics != nil {
		metrics = cfg.Metrics
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = "worker-" + uuid.NewString()[:8]
	}

	return &Worker{
		tasks:        cfg.Tasks,
		notifier:     cfg.Notifier,
		conn:         cfg.Conn,
		executors:    cfg.Executors,
		metrics:      metrics,
		workerID:     workerID,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		taskTimeout:  cfg.TaskTimeout,
		slots:        semaphore.NewWeighted(int64(concurrency)),
		logger:       logger.With("worker_id", workerID),
	}
}

// Start запускает consumer (если есть соединение) и polling.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"concurrency", w.concurrency,
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"task_timeout", w.taskTimeout,
	)

	if w.conn != nil {
		w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
			Queue:    mq.QueueTasksPending,
			Handler:  w.handleTaskPending,
			Prefetch: w.concurrency,
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("task consumer error", "error", err)
			}
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx)
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и ждёт текущие задачи.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}

	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}

// pollLoop - цикл polling.
func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу: подхватываем задачи, созданные пока воркер был выключен.
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll забирает пачку PENDING задач и выполняет их параллельно.
func (w *Worker) poll(ctx context.Context) {
	tasks, err := w.tasks.ListPending(ctx, w.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("failed to list pending tasks", "error", err)
		}
		return
	}

	if len(tasks) == 0 {
		return
	}

	w.logger.Debug("poll found pending tasks", "count", len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for i := range tasks {
		id := tasks[i].ID
		g.Go(func() error {
			err := w.processTask(gctx, id)
			switch {
			case err == nil, errors.Is(err, ErrTaskNotPending), errors.Is(err, ErrTaskNotFound):
			case ctx.Err() != nil:
			default:
				w.logger.Error("failed to process task from poll",
					"task_id", id,
					"error", err,
				)
			}
			// Ошибка одной задачи не отменяет остальные.
			return nil
		})
	}

	_ = g.Wait()
}
