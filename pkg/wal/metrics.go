package wal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var appendDurations = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "fixlog_append_duration_seconds",
		Help:    "append durations for the transaction log",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
	},
	[]string{"type"})

var linesScanned = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "fixlog_log_lines_scanned_total",
		Help: "log lines scanned during read-back",
	})

var linesCorrupt = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "fixlog_log_lines_corrupt_total",
		Help: "corrupt log lines skipped during read-back",
	})
