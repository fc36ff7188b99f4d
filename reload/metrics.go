package reload

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultRetry   = "retry"
)

type metrics struct {
	reloads  *prometheus.CounterVec
	duration prometheus.Histogram
	nodes    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ncnf_reloads_total",
			Help: "Configuration reloads by result.",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ncnf_reload_duration_seconds",
			Help:    "Time to read and merge a configuration.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "ncnf_tree_nodes",
			Help: "Nodes in the live configuration tree.",
		}),
	}
}
