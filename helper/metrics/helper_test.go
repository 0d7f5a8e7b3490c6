package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestParseLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, prometheus.Labels{"chain_id": "270", "node": "a"}, ParseLabels("chain_id", "270", "node", "a"))
	assert.Empty(t, ParseLabels())
	assert.Panics(t, func() { ParseLabels("chain_id") })
}

func TestNilCollectors(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		CounterInc(nil)
		AddCounter(nil, 1)
		SetGauge(nil, 1)
		HistogramObserve(nil, 1)
	})

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "applied"})
	CounterInc(counter)
	AddCounter(counter, 2)

	assert.Equal(t, float64(3), testutil.ToFloat64(counter))
}
