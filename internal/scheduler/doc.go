// Package scheduler - периодическая уборка очереди задач.
//
// Cleaner запускается по cron-расписанию (robfig/cron) и выполняется
// только лидером, выбранным через pg_try_advisory_lock:
//
//	cleaner := scheduler.New(scheduler.Config{
//	    Tasks:      taskRepo,
//	    Inputs:     inputRepo,
//	    Lock:       repo.NewAdvisoryLock(pool, scheduler.DefaultLockKey),
//	    Schedule:   "*/5 * * * *",
//	    StaleAfter: time.Hour,
//	    Retention:  7 * 24 * time.Hour,
//	})
//	if err := cleaner.Start(ctx); err != nil {
//	    return err
//	}
//	defer cleaner.Stop(context.Background())
//
// Зависшая задача (воркер упал посреди выполнения) возвращается в PENDING
// и выполняется заново с первого шага.
package scheduler
