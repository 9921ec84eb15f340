package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e57x_runs_total",
		Help: "Total number of batch runs, by terminal status",
	}, []string{"status"})

	ScansProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "e57x_scans_processed_total",
		Help: "Total number of scans successfully extracted across all runs",
	})

	ScanFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e57x_scan_failures_total",
		Help: "Total number of skipped or failed items, by error kind",
	}, []string{"kind"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "e57x_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})

	ImageBytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "e57x_image_bytes_written_total",
		Help: "Total bytes of resized panoramic images written to disk",
	})
)
