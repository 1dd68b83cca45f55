package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultLockKey - ключ pg_advisory_lock, которым cleaner'ы выбирают лидера.
const DefaultLockKey int64 = 424242

// Default configuration values.
const (
	defaultSchedule   = "*/5 * * * *"
	defaultStaleAfter = time.Hour
	defaultRetention  = 7 * 24 * time.Hour
)

// TaskResetter возвращает зависшие задачи в очередь.
type TaskResetter interface {
	ResetStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// InputPurger удаляет отчёты завершённых задач.
type InputPurger interface {
	PurgeFinishedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Locker - межпроцессная блокировка (repo.AdvisoryLock).
type Locker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Cleaner - периодическая уборка очереди задач.
//
// Каждый запуск:
//  1. Берёт (или подтверждает) лидерство через Locker
//  2. Возвращает в PENDING задачи, висящие в IN_PROGRESS дольше StaleAfter
//  3. Удаляет отчёты задач, завершённых раньше чем Retention назад
//
// Не лидер пропускает запуск. Лидерство удерживается до Stop.
type Cleaner struct {
	tasks  TaskResetter
	inputs InputPurger
	lock   Locker
	logger *slog.Logger
	now    func() time.Time

	schedule   string
	staleAfter time.Duration
	retention  time.Duration

	mu     sync.Mutex
	leader bool
	cron   *cron.Cron
}

// Config - конфигурация Cleaner.
type Config struct {
	Tasks  TaskResetter
	Inputs InputPurger

	// Lock опционален: без него каждый экземпляр считает себя лидером.
	Lock Locker

	Schedule   string        // cron-выражение (default: каждые 5 минут)
	StaleAfter time.Duration // default: 1h
	Retention  time.Duration // default: 7d

	Logger *slog.Logger
}

// New создаёт новый Cleaner.
func New(cfg Config) *Cleaner {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = defaultSchedule
	}

	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}

	retention := cfg.Retention
	if retention <= 0 {
		retention = defaultRetention
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cleaner{
		tasks:      cfg.Tasks,
		inputs:     cfg.Inputs,
		lock:       cfg.Lock,
		logger:     logger.With("component", "cleaner"),
		now:        time.Now,
		schedule:   schedule,
		staleAfter: staleAfter,
		retention:  retention,
	}
}

// Tick выполняет один запуск уборки.
// Ошибка одного действия не отменяет другое.
func (c *Cleaner) Tick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	leader, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	if !leader {
		c.logger.Debug("not a leader, skipping cleaning")
		return nil
	}

	var errs []error

	reset, err := c.tasks.ResetStale(ctx, c.staleAfter)
	if err != nil {
		errs = append(errs, err)
	} else if reset > 0 {
		c.logger.Warn("reset stale tasks to pending",
			"count", reset,
			"stale_after", c.staleAfter,
		)
	}

	before := c.now().UTC().Add(-c.retention)
	purged, err := c.inputs.PurgeFinishedBefore(ctx, before)
	if err != nil {
		errs = append(errs, err)
	} else if purged > 0 {
		c.logger.Info("purged report inputs of finished tasks",
			"count", purged,
			"before", before,
		)
	}

	return errors.Join(errs...)
}

func (c *Cleaner) acquire(ctx context.Context) (bool, error) {
	if c.lock == nil || c.leader {
		return true, nil
	}

	ok, err := c.lock.TryAcquire(ctx)
	if err != nil {
		return false, fmt.Errorf("cleaner lock: %w", err)
	}
	if ok {
		c.logger.Info("cleaner became leader")
	}
	c.leader = ok
	return ok, nil
}

// Start запускает Tick по cron-расписанию. Неблокирующий.
func (c *Cleaner) Start(ctx context.Context) error {
	sched := cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC))

	_, err := sched.AddFunc(c.schedule, func() {
		if err := c.Tick(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("cleaning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cleaner %q: %w", c.schedule, err)
	}

	c.cron = sched
	sched.Start()

	c.logger.Info("cleaner started",
		"schedule", c.schedule,
		"stale_after", c.staleAfter,
		"retention", c.retention,
	)
	return nil
}

// Stop останавливает расписание, ждёт текущий запуск и отпускает лидерство.
func (c *Cleaner) Stop(ctx context.Context) error {
	if c.cron != nil {
		select {
		case <-c.cron.Stop().Done():
		case <-ctx.Done():
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lock == nil || !c.leader {
		return nil
	}
	c.leader = false
	return c.lock.Release(ctx)
}
