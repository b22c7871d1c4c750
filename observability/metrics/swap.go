package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SwapMetrics records swap-engine activity: transitions built per operation
// and the size distribution of fills.
type SwapMetrics struct {
	ops        *prometheus.CounterVec
	fillBought prometheus.Histogram
}

var (
	swapOnce     sync.Once
	swapRegistry *SwapMetrics
)

// Swap returns the lazily-initialised swap metrics registry.
func Swap() *SwapMetrics {
	swapOnce.Do(func() {
		swapRegistry = &SwapMetrics{
			ops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "openswap_swap_ops_total",
				Help: "Count of swap transitions built by operation and outcome.",
			}, []string{"op", "outcome"}),
			fillBought: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "openswap_swap_fill_bought",
				Help:    "Distribution of offered-asset quantities purchased per fill.",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			}),
		}
		prometheus.MustRegister(
			swapRegistry.ops,
			swapRegistry.fillBought,
		)
	})
	return swapRegistry
}

// IncOp counts one engine operation with its outcome.
func (m *SwapMetrics) IncOp(op, outcome string) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, outcome).Inc()
}

// ObserveFill records the purchased quantity of a successful fill.
func (m *SwapMetrics) ObserveFill(bought int64) {
	if m == nil {
		return
	}
	m.fillBought.Observe(float64(bought))
}
