package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts façade operations by outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Total number of cache operations by outcome",
		},
		[]string{"operation", "result"},
	)

	if reg != nil {
		if err := reg.Register(operations); err != nil {
			return nil, err
		}
	}

	return &Metrics{operations: operations}, nil
}

func (m *Metrics) observe(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}
