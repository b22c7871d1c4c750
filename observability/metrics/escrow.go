package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EscrowMetrics records escrow-engine activity.
type EscrowMetrics struct {
	ops *prometheus.CounterVec
}

var (
	escrowOnce     sync.Once
	escrowRegistry *EscrowMetrics
)

// Escrow returns the lazily-initialised escrow metrics registry.
func Escrow() *EscrowMetrics {
	escrowOnce.Do(func() {
		escrowRegistry = &EscrowMetrics{
			ops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "openswap_escrow_ops_total",
				Help: "Count of escrow transitions built by operation and outcome.",
			}, []string{"op", "outcome"}),
		}
		prometheus.MustRegister(escrowRegistry.ops)
	})
	return escrowRegistry
}

// IncOp counts one engine operation with its outcome.
func (m *EscrowMetrics) IncOp(op, outcome string) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, outcome).Inc()
}
