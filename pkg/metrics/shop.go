package metrics

import "github.com/prometheus/client_golang/prometheus"

// ShopMetrics counts storefront business events.
type ShopMetrics struct {
	ordersPlaced    *prometheus.CounterVec
	stockRejections *prometheus.CounterVec
	cartConflicts   prometheus.Counter
	statusChanges   *prometheus.CounterVec
}

func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders placed by payment method.",
	}, []string{"payment_method"})
	stockRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_rejections_total",
		Help:      "Cart or checkout requests rejected for insufficient stock.",
	}, []string{"operation"})
	cartConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_version_conflicts_total",
		Help:      "Cart writes rejected by the optimistic version check.",
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Order status changes by target status.",
	}, []string{"status"})
	reg.MustRegister(ordersPlaced, stockRejections, cartConflicts, statusChanges)
	return &ShopMetrics{
		ordersPlaced:    ordersPlaced,
		stockRejections: stockRejections,
		cartConflicts:   cartConflicts,
		statusChanges:   statusChanges,
	}
}

func (m *ShopMetrics) IncOrderPlaced(paymentMethod string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

func (m *ShopMetrics) IncStockRejection(operation string) {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *ShopMetrics) IncCartConflict() {
	if m == nil || m.cartConflicts == nil {
		return
	}
	m.cartConflicts.Inc()
}

func (m *ShopMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}
