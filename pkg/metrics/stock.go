package metrics

import "github.com/prometheus/client_golang/prometheus"

// StockMetrics tracks inventory movement outcomes.
type StockMetrics struct {
	movements    *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	lockTimeouts prometheus.Counter
	driftRepairs prometheus.Counter
}

// NewStockMetrics registers the stock movement metrics on the provided registerer.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_movements_total",
		Help:      "Committed stock movements by direction.",
	}, []string{"type"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_rejections_total",
		Help:      "Rejected stock movements by reason.",
	}, []string{"reason"})
	lockTimeouts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_lock_timeouts_total",
		Help:      "Movements aborted because the per-part lock wait timed out.",
	})
	driftRepairs := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_drift_repairs_total",
		Help:      "Catalog quantities corrected by ledger reconciliation.",
	})
	reg.MustRegister(movements, rejections, lockTimeouts, driftRepairs)
	return &StockMetrics{
		movements:    movements,
		rejections:   rejections,
		lockTimeouts: lockTimeouts,
		driftRepairs: driftRepairs,
	}
}

// IncMovement records a committed movement of the given type ("in" or "out").
func (s *StockMetrics) IncMovement(movementType string) {
	if s == nil || s.movements == nil {
		return
	}
	s.movements.WithLabelValues(normalizeLabel(movementType)).Inc()
}

// IncRejection records a rejected movement with the given reason.
func (s *StockMetrics) IncRejection(reason string) {
	if s == nil || s.rejections == nil {
		return
	}
	s.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncLockTimeout records a movement aborted on lock wait timeout.
func (s *StockMetrics) IncLockTimeout() {
	if s == nil || s.lockTimeouts == nil {
		return
	}
	s.lockTimeouts.Inc()
}

// IncDriftRepair records a quantity corrected during reconciliation.
func (s *StockMetrics) IncDriftRepair() {
	if s == nil || s.driftRepairs == nil {
		return
	}
	s.driftRepairs.Inc()
}
