package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rowsMerged  *prometheus.CounterVec
	rowsDropped *prometheus.CounterVec
	blockSyncs  *prometheus.CounterVec
	enrichRuns  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsMerged: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeblocks_rows_merged_total",
				Help: "Rows merged into the store by table and outcome",
			},
			[]string{"table", "outcome"},
		),
		rowsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeblocks_rows_dropped_total",
				Help: "Input rows dropped during parsing by table and reason",
			},
			[]string{"table", "reason"},
		),
		blockSyncs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeblocks_block_syncs_total",
				Help: "Block sync outcomes",
			},
			[]string{"status"},
		),
		enrichRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeblocks_enrichment_runs_total",
				Help: "Enrichment tier runs by tier and status",
			},
			[]string{"tier", "status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeblocks_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradeblocks_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRowsMerged records one merge's insert, update and skip counts.
func (r *Recorder) RecordRowsMerged(table string, stats models.MergeStats) {
	r.rowsMerged.WithLabelValues(table, "inserted").Add(float64(stats.Inserted))
	r.rowsMerged.WithLabelValues(table, "updated").Add(float64(stats.Updated))
	r.rowsMerged.WithLabelValues(table, "skipped").Add(float64(stats.Skipped))
}

// RecordRowsDropped records input rows dropped during parsing.
func (r *Recorder) RecordRowsDropped(table, reason string, n int) {
	if n <= 0 {
		return
	}
	r.rowsDropped.WithLabelValues(table, reason).Add(float64(n))
}

// RecordBlockSync records one block sync outcome.
func (r *Recorder) RecordBlockSync(status string) {
	r.blockSyncs.WithLabelValues(status).Inc()
}

// RecordEnrichment records one enrichment tier run.
func (r *Recorder) RecordEnrichment(tier, status string) {
	r.enrichRuns.WithLabelValues(tier, status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
