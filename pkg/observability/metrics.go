// Package observability provides Prometheus metrics for the export pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// ProductRowsLoaded tracks catalog rows fetched from the warehouse
	ProductRowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salespipe_product_rows_loaded_total",
			Help: "Total number of product rows loaded from the warehouse",
		},
	)

	// SalesFilesFetched tracks per-day sales file fetch outcomes
	SalesFilesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salespipe_sales_files_fetched_total",
			Help: "Total number of per-day sales file fetch attempts",
		},
		[]string{"status"}, // status: loaded, missing
	)

	// SalesRowsLoaded tracks sales rows read from object storage
	SalesRowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salespipe_sales_rows_loaded_total",
			Help: "Total number of sales rows loaded from object storage",
		},
	)

	// RowsExported tracks rows written to the export file
	RowsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salespipe_rows_exported_total",
			Help: "Total number of rows written to export files",
		},
		[]string{"format"},
	)

	// PipelineRuns counts pipeline executions by outcome
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salespipe_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"}, // status: success, failed
	)

	// PipelineDuration measures end-to-end run duration in seconds
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "salespipe_pipeline_duration_seconds",
			Help:    "End-to-end pipeline run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~400s
		},
	)
)

// RecordRun updates the run counters and the duration histogram for one
// pipeline execution.
func RecordRun(duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failed"
	}

	PipelineRuns.WithLabelValues(status).Inc()
	PipelineDuration.Observe(duration.Seconds())
}
