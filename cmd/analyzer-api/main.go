// Analyzer API - HTTP API очереди анализа.
//
// Принимает отчёты сканера (POST /api/ce/submit), отдаёт задачи и
// состояние очереди. Воркеры будятся через task.pending в RabbitMQ;
// без RabbitMQ задачи подхватываются polling'ом.
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

	"github.com/shaiso/Analyzer/internal/api"
	"github.com/shaiso/Analyzer/internal/app"
	"github.com/shaiso/Analyzer/internal/config"
	"github.com/shaiso/Analyzer/internal/mq"
	"github.com/shaiso/Analyzer/internal/queue"
	"github.com/shaiso/Analyzer/internal/telemetry"
)

func main() {
	cfg, err := config.Load(os.Getenv("ANALYZER_CONFIG"))
	if err != nil {
		telemetry.SetupLogger(telemetry.LogConfig{}).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(telemetry.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger.Info("starting analyzer-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer a.Close()
	logger.Info("database connected")

	var notifier queue.Notifier
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
		logger.Warn("RabbitMQ not available, workers will pick tasks up by polling", "error", err)
	} else {
		defer mqConn.Close()
		notifier = mq.NewPublisher(mqConn, logger)
	}

	handler := api.NewHandler(api.Config{
		Tasks: a.Tasks,
		Submitter: queue.NewSubmitter(queue.Config{
			Tasks:               a.Tasks,
			Projects:            a.Components,
			Organizations:       a.Organizations,
			Notifier:            notifier,
			DefaultOrganization: cfg.Organization.DefaultKey,
			Logger:              logger,
		}),
		MaxReportSize: cfg.API.MaxReportSize,
		Observer:      telemetry.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Logger:        logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		// Без брокера API работает: воркеры заберут задачи polling'ом.
		if mqConn == nil || !mqConn.Ready() {
			w.Write([]byte("ok, notifications unavailable"))
			return
		}
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
