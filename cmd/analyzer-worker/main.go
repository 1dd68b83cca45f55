// Analyzer Worker - выполняет задачи анализа отчётов.
//
// Worker:
//   - Получает уведомления task.pending из RabbitMQ и опрашивает БД
//   - Выполняет pipeline задачи (извлечение отчёта → ... → итог)
//   - Сохраняет итог и публикует task.completed
//   - Периодически убирает очередь (лидер по advisory lock)
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Analyzer/internal/app"
	"github.com/shaiso/Analyzer/internal/config"
	"github.com/shaiso/Analyzer/internal/mq"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/repo"
	"github.com/shaiso/Analyzer/internal/scheduler"
	"github.com/shaiso/Analyzer/internal/telemetry"
	"github.com/shaiso/Analyzer/internal/worker"
)

func main() {
	cfg, err := config.Load(os.Getenv("ANALYZER_CONFIG"))
	if err != nil {
		telemetry.SetupLogger(telemetry.LogConfig{}).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(telemetry.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger.Info("starting analyzer-worker", "worker_id", cfg.Worker.ID)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer a.Close()
	logger.Info("database connected")

	if err := repo.Migrate(ctx, a.Pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Pipeline'ы собираются до первой задачи: ошибка проводки останавливает старт.
	executors, err := a.Pipelines(pipeline.WithObserver(metrics))
	if err != nil {
		logger.Error("failed to assemble pipelines", "error", err)
		os.Exit(1)
	}
	for taskType, e := range executors {
		logger.Info("pipeline assembled", "task_type", taskType, "steps", e.Descriptions())
	}

	// RabbitMQ
	var notifier worker.Notifier
	topology := mq.DefaultTopology()
	mqConn, err := mq.Dial(mq.ConnectionConfig{
		URL: cfg.RabbitMQ.URL,
		Backoff: mq.Backoff{
			Min: cfg.RabbitMQ.ReconnectMin,
			Max: cfg.RabbitMQ.ReconnectMax,
		},
		Topology: &topology,
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
	} else {
		defer mqConn.Close()
		notifier = mq.NewPublisher(mqConn, logger)
	}

	w := worker.New(worker.Config{
		Tasks:        a.Tasks,
		Notifier:     notifier,
		Conn:         mqConn,
		Executors:    executors,
		Metrics:      metrics,
		WorkerID:     cfg.Worker.ID,
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
		BatchSize:    cfg.Worker.BatchSize,
		TaskTimeout:  cfg.Worker.TaskTimeout,
		Logger:       logger,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	cleaner := scheduler.New(scheduler.Config{
		Tasks:      a.Tasks,
		Inputs:     a.Inputs,
		Lock:       repo.NewAdvisoryLock(a.Pool, scheduler.DefaultLockKey),
		Schedule:   cfg.Cleaner.Schedule,
		StaleAfter: cfg.Cleaner.StaleAfter,
		Retention:  cfg.Cleaner.Retention,
		Logger:     logger,
	})
	if err := cleaner.Start(ctx); err != nil {
		logger.Error("failed to start cleaner", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	w.Stop()
	if err := cleaner.Stop(shutdownCtx); err != nil {
		logger.Warn("failed to release cleaner lock", "error", err)
	}
	logger.Info("analyzer-worker stopped")
}
