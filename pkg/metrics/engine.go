package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics counts the order engine's primary outcomes. All methods are
// nil-safe so services can run without a registry in tests.
type EngineMetrics struct {
	ordersCreated   *prometheus.CounterVec
	orderStatus     *prometheus.CounterVec
	kotsCreated     *prometheus.CounterVec
	invoicesCreated prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labeled by order type.",
	}, []string{"order_type"})
	orderStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions, labeled by target status.",
	}, []string{"status"})
	kotsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kots_created_total",
		Help: "Kitchen order tickets created, labeled by station.",
	}, []string{"station"})
	invoicesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoices_created_total",
		Help: "Invoices generated.",
	})
	reg.MustRegister(ordersCreated, orderStatus, kotsCreated, invoicesCreated)
	return &EngineMetrics{
		ordersCreated:   ordersCreated,
		orderStatus:     orderStatus,
		kotsCreated:     kotsCreated,
		invoicesCreated: invoicesCreated,
	}
}

// IncOrderCreated counts one created order for the given type.
func (m *EngineMetrics) IncOrderCreated(orderType string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(orderType)).Inc()
}

// IncOrderStatus counts one transition into the given status.
func (m *EngineMetrics) IncOrderStatus(status string) {
	if m == nil || m.orderStatus == nil {
		return
	}
	m.orderStatus.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncKOTCreated counts one created ticket for the given station.
func (m *EngineMetrics) IncKOTCreated(station string) {
	if m == nil || m.kotsCreated == nil {
		return
	}
	m.kotsCreated.WithLabelValues(normalizeLabel(station)).Inc()
}

// IncInvoiceCreated counts one generated invoice.
func (m *EngineMetrics) IncInvoiceCreated() {
	if m == nil || m.invoicesCreated == nil {
		return
	}
	m.invoicesCreated.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
