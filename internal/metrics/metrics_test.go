package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	GenerationsTotal.WithLabelValues("flux-pro", "success").Inc()
	GenerationLatencySeconds.WithLabelValues("flux-pro").Observe(1.5)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"imagestudio_generations_total",
		"imagestudio_generation_latency_seconds",
		"imagestudio_history_persist_failures_total",
		"imagestudio_stale_results_total",
	} {
		assert.True(t, names[want], want)
	}
}

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	before := counterValue(t, "imagestudio_stale_results_total", nil)
	StaleResultsTotal.Inc()
	assert.InDelta(t, before+1, counterValue(t, "imagestudio_stale_results_total", nil), 0.0001)

	labels := map[string]string{"model": "flux-schnell", "outcome": "upstream_error"}
	before = counterValue(t, "imagestudio_generations_total", labels)
	GenerationsTotal.WithLabelValues("flux-schnell", "upstream_error").Inc()
	assert.InDelta(t, before+1, counterValue(t, "imagestudio_generations_total", labels), 0.0001)
}
