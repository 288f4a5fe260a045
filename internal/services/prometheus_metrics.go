package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	importBatchesTotal    *prometheus.CounterVec
	importBatchSize       prometheus.Gauge
	importBatchDuration   prometheus.Histogram
	importRejectionsTotal prometheus.Counter
	categoryOverrides     *prometheus.CounterVec
	rulesAddedTotal       *prometheus.CounterVec
	ruleSetSize           prometheus.Gauge
	categorizedTotal      *prometheus.CounterVec
	recategorizeDuration  prometheus.Histogram
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		importBatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_batches_total",
				Help: "Total number of import batches by outcome",
			},
			[]string{"status"},
		),
		importBatchSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "import_batch_size",
				Help: "Number of transactions in the most recent import batch",
			},
		),
		importBatchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "import_batch_duration_milliseconds",
				Help:    "Import batch processing duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		importRejectionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "import_rejections_total",
				Help: "Total number of rejected import records",
			},
		),
		categoryOverrides: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "category_overrides_total",
				Help: "Total number of manual category overrides",
			},
			[]string{"category"},
		),
		rulesAddedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rules_added_total",
				Help: "Total number of rules added by source",
			},
			[]string{"source"},
		),
		ruleSetSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rule_set_size",
				Help: "Current number of installed rules",
			},
		),
		categorizedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_categorized_total",
				Help: "Total number of transactions categorized",
			},
			[]string{"outcome"},
		),
		recategorizeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recategorize_duration_milliseconds",
				Help:    "Recategorization pass duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "import.batch.completed":
		m.importBatchesTotal.WithLabelValues("completed").Inc()
	case "import.batch.failed":
		m.importBatchesTotal.WithLabelValues("failed").Inc()
	case "import.batch.cancelled":
		m.importBatchesTotal.WithLabelValues("cancelled").Inc()
	case "import.record.rejected":
		m.importRejectionsTotal.Inc()
	case "category.override":
		if category := tags["category"]; category != "" {
			m.categoryOverrides.WithLabelValues(category).Inc()
		}
	case "rules.added":
		if source := tags["source"]; source != "" {
			m.rulesAddedTotal.WithLabelValues(source).Inc()
		}
	case "transaction.categorized":
		m.categorizedTotal.WithLabelValues("matched").Inc()
	case "transaction.uncategorized":
		m.categorizedTotal.WithLabelValues("fallback").Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "import.batch":
		m.importBatchDuration.Observe(float64(duration.Milliseconds()))
	case "recategorize":
		m.recategorizeDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "import.batch.size":
		m.importBatchSize.Set(value)
	case "rules.count":
		m.ruleSetSize.Set(value)
	}
}

// NoopMetrics discards every recording, for tests and tools
type NoopMetrics struct{}

func NewNoopMetrics() MetricsRecorderInterface { return &NoopMetrics{} }

func (m *NoopMetrics) IncrementCounter(name string, tags map[string]string) {}

func (m *NoopMetrics) RecordProcessingTime(name string, duration time.Duration) {}

func (m *NoopMetrics) RecordGauge(name string, value float64, tags map[string]string) {}
