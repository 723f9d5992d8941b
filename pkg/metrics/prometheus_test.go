package metrics

import (
	"fraud_screener/internal/domain"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector_RecordEvaluation(t *testing.T) {
	m := NewMetricsCollector(nil)

	m.RecordEvaluation(domain.EvaluationResult{TransactionID: "t1"}, time.Millisecond)
	m.RecordEvaluation(domain.EvaluationResult{
		TransactionID: "t2",
		Matches: []domain.Match{
			{RuleID: "R2", Action: domain.ActionReject, Reason: "Web channel transaction"},
			{RuleID: "R4", Action: domain.ActionReview, Reason: "Late-night transaction"},
		},
	}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues("clear")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues("flagged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ruleMatches.WithLabelValues("R2", "reject")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ruleMatches.WithLabelValues("R4", "review")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.evaluationDuration))
}

func TestMetricsCollector_Counters(t *testing.T) {
	m := NewMetricsCollector(nil)

	m.RecordValidationFailure("api")
	m.RecordValidationFailure("api")
	m.RecordValidationFailure("batch")
	m.RecordRequest("check_transaction", http.StatusOK)
	m.RecordRequest("check_transaction", http.StatusUnprocessableEntity)
	m.RecordBatch(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("api")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("batch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("check_transaction", "422")))

	expected := `
# HELP fraud_validation_failures_total Total number of rejected transaction inputs
# TYPE fraud_validation_failures_total counter
fraud_validation_failures_total{source="api"} 2
fraud_validation_failures_total{source="batch"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "fraud_validation_failures_total"))
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := NewMetricsCollector(nil)
	m.RecordBatch(3)

	rec := httptest.NewRecorder()
	m.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fraud_batch_size_count 1")
}
