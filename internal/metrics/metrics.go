package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the VolScope collectors. A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	FetchDuration *prometheus.HistogramVec
	Analyses      *prometheus.CounterVec
	Snapshots     *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors on a private registry.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscope_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volscope_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volscope_fetch_duration_seconds",
				Help:    "Price data fetch latency by provider and result",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "result"},
		),
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscope_analyses_total",
				Help: "Volatility pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		Snapshots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volscope_snapshots_total",
				Help: "Watchlist snapshots by result",
			},
			[]string{"result"},
		),
	}
	r.reg.MustRegister(
		r.HTTPRequests, r.HTTPDuration, r.FetchDuration, r.Analyses, r.Snapshots,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func (r *Registry) ObserveHTTP(route, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, status).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveFetch(provider, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.FetchDuration.WithLabelValues(provider, result).Observe(elapsed.Seconds())
}

func (r *Registry) CountAnalysis(outcome string) {
	if r == nil {
		return
	}
	r.Analyses.WithLabelValues(outcome).Inc()
}

func (r *Registry) CountSnapshot(result string) {
	if r == nil {
		return
	}
	r.Snapshots.WithLabelValues(result).Inc()
}
