package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates the engine's Prometheus metrics.
type Collector struct {
	// Workflow metrics
	workflowRunsTotal   *prometheus.CounterVec
	workflowIterations  prometheus.Histogram
	workflowRunDuration *prometheus.HistogramVec

	// Subtask and rule metrics
	subtasksExecutedTotal *prometheus.CounterVec
	rulesLearnedTotal     prometheus.Counter
	rulesRevalidatedTotal prometheus.Counter

	// Agent store metrics
	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg falls back to the default Prometheus registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.workflowRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_runs_total",
			Help:      "Total number of workflow runs by final status",
		},
		[]string{"status"},
	)

	c.workflowIterations = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_iterations",
			Help:      "Number of loop iterations per workflow run",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
		},
	)

	c.workflowRunDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_run_duration_seconds",
			Help:      "Workflow run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	c.subtasksExecutedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subtasks_executed_total",
			Help:      "Total number of subtasks executed by resulting status",
		},
		[]string{"status"},
	)

	c.rulesLearnedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_learned_total",
			Help:      "Total number of rules learned through retrospection",
		},
	)

	c.rulesRevalidatedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_revalidated_total",
			Help:      "Total number of rule revalidation passes",
		},
	)

	c.storeOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of agent store operations",
		},
		[]string{"operation", "status"},
	)

	c.storeOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Agent store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordWorkflowRun records a completed workflow run.
func (c *Collector) RecordWorkflowRun(status string, iterations int, duration time.Duration) {
	c.workflowRunsTotal.WithLabelValues(status).Inc()
	c.workflowIterations.Observe(float64(iterations))
	c.workflowRunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordSubtaskExecution records one executed subtask.
func (c *Collector) RecordSubtaskExecution(status string) {
	c.subtasksExecutedTotal.WithLabelValues(status).Inc()
}

// RecordRulesLearned records newly learned rules.
func (c *Collector) RecordRulesLearned(count int) {
	c.rulesLearnedTotal.Add(float64(count))
}

// RecordRuleRevalidation records one revalidation pass.
func (c *Collector) RecordRuleRevalidation() {
	c.rulesRevalidatedTotal.Inc()
}

// RecordStoreOperation records one agent store operation.
func (c *Collector) RecordStoreOperation(operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.storeOperationsTotal.WithLabelValues(operation, status).Inc()
	c.storeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records one HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// statusClass buckets an HTTP status code into its class string.
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
