package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locapoll_cycles_total",
		Help: "Completed poll cycles, successful or not",
	})
	pollFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locapoll_failures_total",
		Help: "Failed poll cycles by failure kind",
	}, []string{"kind"})
	pollCyclesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locapoll_cycles_skipped_total",
		Help: "Poll ticks skipped because the previous cycle was still running",
	})
	recordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locapoll_records_skipped_total",
		Help: "Asset status records dropped during normalization",
	})
	trackedDevices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "locapoll_devices",
		Help: "Devices in the last published snapshot",
	})
	lastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "locapoll_last_success_timestamp_seconds",
		Help: "Unix time of the last successful poll cycle",
	})
	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "locapoll_cycle_duration_seconds",
		Help:    "Duration of a full poll-normalize-publish cycle",
		Buckets: prometheus.DefBuckets,
	})
)
