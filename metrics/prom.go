package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Completed Poll calls.
	PollTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remenv_poll_total",
		Help: "Number of completed poll calls",
	})

	// Sub-environment results collected across all poll batches.
	PollResultTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remenv_poll_result_total",
		Help: "Number of sub-environment results collected",
	})

	// Faults raised while resolving sub-environment tasks.
	WorkerFaultTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remenv_worker_fault_total",
		Help: "Number of faults raised by sub-environment tasks",
	})

	// Workers torn down and rebuilt.
	WorkerRestartTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remenv_worker_restart_total",
		Help: "Number of sub-environment worker restarts",
	})

	// Wall time spent waiting inside Poll.
	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "remenv_poll_duration_seconds",
		Help:    "Poll call duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
