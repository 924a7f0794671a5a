// Package metrics exposes ChainMagnet's Prometheus instrumentation. Each
// service instance owns its own registry so tests never fight over global
// collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for provider request counters.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Registry bundles every collector the service registers.
type Registry struct {
	registry *prometheus.Registry

	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	ScoresComputed   prometheus.Counter
	DiscoveryRuns    prometheus.Counter
}

// NewRegistry creates and registers all ChainMagnet collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainmagnet_provider_requests_total",
				Help: "Provider requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chainmagnet_provider_latency_seconds",
				Help:    "Provider request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"provider"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainmagnet_cache_hits_total",
				Help: "Cache hits by data class",
			},
			[]string{"class"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainmagnet_cache_misses_total",
				Help: "Cache misses by data class",
			},
			[]string{"class"},
		),
		ScoresComputed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chainmagnet_scores_computed_total",
				Help: "Composite scores computed",
			},
		),
		DiscoveryRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chainmagnet_discovery_runs_total",
				Help: "Discovery cross-reference runs executed",
			},
		),
	}

	r.registry.MustRegister(
		r.ProviderRequests,
		r.ProviderLatency,
		r.CacheHits,
		r.CacheMisses,
		r.ScoresComputed,
		r.DiscoveryRuns,
	)
	return r
}

// ObserveProvider records one provider call outcome with its latency.
func (r *Registry) ObserveProvider(provider string, latency time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	r.ProviderLatency.WithLabelValues(provider).Observe(latency.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gather exposes the underlying gatherer for tests and diagnostics.
func (r *Registry) Gather() prometheus.Gatherer {
	return r.registry
}
