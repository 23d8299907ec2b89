// Package metrics exposes prometheus instrumentation for batch runs; the
// batch command serves these on --metrics-addr while a sweep is running.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts finished simulation runs, labeled by terminal
	// status and failure reason ("" for delivered runs).
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dtnsim_runs_total",
			Help: "Total number of finished simulation runs",
		},
		[]string{"status", "reason"},
	)

	DisruptionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dtnsim_disruptions_total",
			Help: "Total number of hop disruptions across all runs",
		},
	)

	RetransmissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dtnsim_retransmissions_total",
			Help: "Total number of recovery retransmissions across all runs",
		},
	)

	// RunLogicalDelay observes the accumulated logical delay of delivered
	// runs. Buckets cover LEO relays up to multi-hour deep-space paths.
	RunLogicalDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dtnsim_run_logical_delay_seconds",
			Help:    "Logical end-to-end delay of delivered bundles in seconds",
			Buckets: []float64{1, 10, 60, 300, 960, 1800, 3600, 7200, 14400},
		},
	)
)

// ObserveRun records one finished run.
func ObserveRun(status, reason string, delivered bool, logicalDelay float64, disruptions, retransmissions int) {
	RunsTotal.WithLabelValues(status, reason).Inc()
	DisruptionsTotal.Add(float64(disruptions))
	RetransmissionsTotal.Add(float64(retransmissions))
	if delivered {
		RunLogicalDelay.Observe(logicalDelay)
	}
}
