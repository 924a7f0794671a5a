package metrics

import (
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestRegistry_ObserveProvider(t *testing.T) {
	r := NewRegistry()

	r.ObserveProvider("coingecko", 120*time.Millisecond, nil)
	r.ObserveProvider("coingecko", 80*time.Millisecond, nil)
	r.ObserveProvider("bridgewatch", time.Second, errors.New("boom"))

	families, err := r.Gather().Gather()
	require.NoError(t, err)

	requests := findFamily(t, families, "chainmagnet_provider_requests_total")
	require.NotNil(t, requests)

	counts := make(map[string]float64)
	for _, m := range requests.GetMetric() {
		var provider, outcome string
		for _, l := range m.GetLabel() {
			switch l.GetName() {
			case "provider":
				provider = l.GetValue()
			case "outcome":
				outcome = l.GetValue()
			}
		}
		counts[provider+"/"+outcome] = m.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, counts["coingecko/success"])
	assert.Equal(t, 1.0, counts["bridgewatch/error"])

	latency := findFamily(t, families, "chainmagnet_provider_latency_seconds")
	require.NotNil(t, latency)
	assert.NotEmpty(t, latency.GetMetric())
}

func TestRegistry_CacheCounters(t *testing.T) {
	r := NewRegistry()

	r.CacheHits.WithLabelValues("market").Inc()
	r.CacheMisses.WithLabelValues("market").Inc()
	r.CacheMisses.WithLabelValues("bridge").Inc()

	families, err := r.Gather().Gather()
	require.NoError(t, err)

	misses := findFamily(t, families, "chainmagnet_cache_misses_total")
	require.NotNil(t, misses)
	assert.Len(t, misses.GetMetric(), 2)
}

func TestRegistry_IsolatedInstances(t *testing.T) {
	// Two registries must not share collectors: tests and embedded uses
	// instantiate freely.
	a := NewRegistry()
	b := NewRegistry()
	a.ScoresComputed.Inc()

	families, err := b.Gather().Gather()
	require.NoError(t, err)
	scores := findFamily(t, families, "chainmagnet_scores_computed_total")
	require.NotNil(t, scores)
	assert.Equal(t, 0.0, scores.GetMetric()[0].GetCounter().GetValue())
}
