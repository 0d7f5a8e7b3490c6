package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ParseLabels turns "k1", "v1", "k2", "v2" into constant labels. It panics on
// an odd count since that is a programming error.
func ParseLabels(labelsWithValues ...string) prometheus.Labels {
	if len(labelsWithValues)%2 != 0 {
		panic(fmt.Sprintf("invalid labels: %v", labelsWithValues))
	}

	labels := make(prometheus.Labels, len(labelsWithValues)/2)

	for i := 0; i < len(labelsWithValues); i += 2 {
		labels[labelsWithValues[i]] = labelsWithValues[i+1]
	}

	return labels
}

// The helpers below accept nil collectors so nil metrics need no branches

func CounterInc(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}

func AddCounter(counter prometheus.Counter, v float64) {
	if counter != nil {
		counter.Add(v)
	}
}

func SetGauge(gauge prometheus.Gauge, v float64) {
	if gauge != nil {
		gauge.Set(v)
	}
}

func HistogramObserve(histogram prometheus.Histogram, v float64) {
	if histogram != nil {
		histogram.Observe(v)
	}
}
