package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCollector() *Collector {
	return NewCollector("test", prometheus.NewRegistry(), zap.NewNop())
}

func TestNewCollector(t *testing.T) {
	collector := newTestCollector()

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.workflowRunsTotal)
	assert.NotNil(t, collector.workflowIterations)
	assert.NotNil(t, collector.subtasksExecutedTotal)
	assert.NotNil(t, collector.rulesLearnedTotal)
	assert.NotNil(t, collector.storeOperationsTotal)
	assert.NotNil(t, collector.httpRequestsTotal)
}

func TestCollector_RecordWorkflowRun(t *testing.T) {
	collector := newTestCollector()

	collector.RecordWorkflowRun("completed", 4, 250*time.Millisecond)
	collector.RecordWorkflowRun("failed", 10, 1*time.Second)

	count := testutil.CollectAndCount(collector.workflowRunsTotal)
	assert.Equal(t, 2, count)

	completed := testutil.ToFloat64(collector.workflowRunsTotal.WithLabelValues("completed"))
	assert.Equal(t, 1.0, completed)
}

func TestCollector_RecordSubtaskExecution(t *testing.T) {
	collector := newTestCollector()

	collector.RecordSubtaskExecution("completed")
	collector.RecordSubtaskExecution("completed")
	collector.RecordSubtaskExecution("failed")

	completed := testutil.ToFloat64(collector.subtasksExecutedTotal.WithLabelValues("completed"))
	assert.Equal(t, 2.0, completed)

	failed := testutil.ToFloat64(collector.subtasksExecutedTotal.WithLabelValues("failed"))
	assert.Equal(t, 1.0, failed)
}

func TestCollector_RecordRules(t *testing.T) {
	collector := newTestCollector()

	collector.RecordRulesLearned(1)
	collector.RecordRulesLearned(2)
	collector.RecordRuleRevalidation()

	assert.Equal(t, 3.0, testutil.ToFloat64(collector.rulesLearnedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.rulesRevalidatedTotal))
}

func TestCollector_RecordStoreOperation(t *testing.T) {
	collector := newTestCollector()

	collector.RecordStoreOperation("save", nil, 5*time.Millisecond)
	collector.RecordStoreOperation("save", errors.New("boom"), 5*time.Millisecond)

	ok := testutil.ToFloat64(collector.storeOperationsTotal.WithLabelValues("save", "ok"))
	assert.Equal(t, 1.0, ok)

	failed := testutil.ToFloat64(collector.storeOperationsTotal.WithLabelValues("save", "error"))
	assert.Equal(t, 1.0, failed)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := newTestCollector()

	collector.RecordHTTPRequest("POST", "/api/v1/workflows/execute", 200, 100*time.Millisecond)
	collector.RecordHTTPRequest("GET", "/api/v1/agents/x", 404, 10*time.Millisecond)

	ok := testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/api/v1/workflows/execute", "2xx"))
	assert.Equal(t, 1.0, ok)

	notFound := testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/api/v1/agents/x", "4xx"))
	assert.Equal(t, 1.0, notFound)
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
		{99, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.code))
	}
}
