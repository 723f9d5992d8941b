package metrics

import (
	"fraud_screener/internal/domain"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsCollector struct {
	registry           *prometheus.Registry
	evaluations        *prometheus.CounterVec
	ruleMatches        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	batchSize          prometheus.Histogram
	validationFailures *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	logger             *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_evaluations_total",
			Help: "Total number of evaluated transactions by outcome",
		}, []string{"status"}),
		ruleMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_rule_matches_total",
			Help: "Total number of rule matches",
		}, []string{"rule_id", "action"}),
		evaluationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_evaluation_duration_seconds",
			Help:    "Time taken to evaluate one transaction",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_batch_size",
			Help:    "Number of transactions per evaluated batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		validationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_validation_failures_total",
			Help: "Total number of rejected transaction inputs",
		}, []string{"source"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		logger: logger,
	}
}

func (m *MetricsCollector) RecordEvaluation(result domain.EvaluationResult, duration time.Duration) {
	m.evaluations.WithLabelValues(string(result.Status())).Inc()
	for _, match := range result.Matches {
		m.ruleMatches.WithLabelValues(match.RuleID, string(match.Action)).Inc()
	}
	m.evaluationDuration.Observe(duration.Seconds())
}

func (m *MetricsCollector) RecordBatch(size int) {
	m.batchSize.Observe(float64(size))
}

func (m *MetricsCollector) RecordValidationFailure(source string) {
	m.validationFailures.WithLabelValues(source).Inc()
}

func (m *MetricsCollector) RecordRequest(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}
