package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Parse failure and rejection reason label values.
const (
	ReasonTooShort        = "too_short"
	ReasonMalformedTemp   = "malformed_temperature"
	ReasonMissingReading  = "missing_reading"
	ReasonUntrustedSource = "untrusted_quality"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// extraction pipeline.
type Metrics struct {
	LinesRead       prometheus.Counter
	ParseFailures   *prometheus.CounterVec // label: reason={too_short,malformed_temperature}
	RecordsRejected *prometheus.CounterVec // label: reason={missing_reading,untrusted_quality}
	RecordsAccepted prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics (streaming mode).
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Partitioned run metrics (batch mode).
	PartitionsProcessed prometheus.Counter
	MergeDuration       prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncdc_etl",
			Name:      "lines_read_total",
			Help:      "Total raw record lines read from the source.",
		}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ncdc_etl",
			Name:      "parse_failures_total",
			Help:      "Lines dropped at parse time, by reason.",
		}, []string{"reason"}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ncdc_etl",
			Name:      "records_rejected_total",
			Help:      "Parsed records excluded by the quality filter, by reason.",
		}, []string{"reason"}),
		RecordsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncdc_etl",
			Name:      "records_accepted_total",
			Help:      "Records that passed filtering and entered aggregation.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ncdc_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ncdc_etl",
			Name:      "batch_size",
			Help:      "Number of lines per batch extracted from the source.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ncdc_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete extract-parse-filter-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PartitionsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncdc_etl",
			Name:      "partitions_processed_total",
			Help:      "Input partitions folded into local aggregators.",
		}),
		MergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ncdc_etl",
			Name:      "merge_duration_seconds",
			Help:      "Time spent merging partial aggregators into the global one.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1},
		}),
	}

	prometheus.MustRegister(
		m.LinesRead,
		m.ParseFailures,
		m.RecordsRejected,
		m.RecordsAccepted,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.PartitionsProcessed,
		m.MergeDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LinesRead:               prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ncdc_etl", Name: "lines_read_total"}),
		ParseFailures:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ncdc_etl", Name: "parse_failures_total"}, []string{"reason"}),
		RecordsRejected:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ncdc_etl", Name: "records_rejected_total"}, []string{"reason"}),
		RecordsAccepted:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ncdc_etl", Name: "records_accepted_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ncdc_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ncdc_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ncdc_etl", Name: "batch_processing_duration_seconds"}),
		PartitionsProcessed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ncdc_etl", Name: "partitions_processed_total"}),
		MergeDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ncdc_etl", Name: "merge_duration_seconds"}),
	}
}
