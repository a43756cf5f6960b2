package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_evaluations_total", Help: "Evaluations by resulting signal"},
		[]string{"symbol", "signal"},
	)
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_alerts_total", Help: "Alerts that passed de-duplication"},
		[]string{"symbol", "signal"},
	)
	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_fetch_errors_total", Help: "Failed market data fetches"},
		[]string{"symbol"},
	)
	NotifyErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sentinel_notify_errors_total", Help: "Alerts with at least one failed sender"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_cycle_duration_seconds",
			Help:    "Wall time of one poll cycle over all tickers",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(EvaluationsTotal, AlertsTotal, FetchErrorsTotal, NotifyErrorsTotal, CycleDuration)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
