package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/pipeline"
)

// Metrics - Prometheus метрики воркера.
type Metrics struct {
	stepDuration    *prometheus.HistogramVec
	tasksTotal      *prometheus.CounterVec
	tasksInProgress prometheus.Gauge
}

// NewMetrics регистрирует метрики в reg.
// В production передаётся prometheus.DefaultRegisterer, в тестах - prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyzer_step_duration_seconds",
			Help:    "Duration of pipeline steps",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"task_type", "step", "outcome"}),

		tasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_tasks_total",
			Help: "Processed tasks by type and final status",
		}, []string{"task_type", "status"}),

		tasksInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "analyzer_tasks_in_progress",
			Help: "Tasks currently executed by this worker",
		}),
	}
}

// ObserveStep реализует pipeline.Observer.
func (m *Metrics) ObserveStep(taskType domain.TaskType, step string, elapsed time.Duration, kind pipeline.Kind) {
	m.stepDuration.WithLabelValues(string(taskType), step, kind.String()).Observe(elapsed.Seconds())
}

// TaskStarted увеличивает счётчик задач в работе.
func (m *Metrics) TaskStarted() {
	m.tasksInProgress.Inc()
}

// TaskFinished фиксирует итоговый статус задачи.
func (m *Metrics) TaskFinished(taskType domain.TaskType, status domain.TaskStatus) {
	m.tasksInProgress.Dec()
	m.tasksTotal.WithLabelValues(string(taskType), string(status)).Inc()
}

// HTTPMetrics - Prometheus метрики HTTP API.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics регистрирует метрики HTTP API в reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)

	return &HTTPMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_api_http_requests_total",
			Help: "HTTP requests handled by the API",
		}, []string{"route", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyzer_api_http_request_duration_seconds",
			Help:    "Duration of HTTP requests handled by the API",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveRequest реализует api.RequestObserver.
func (m *HTTPMetrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
