package obs

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docelucro/backend-doce/internal/events"
)

var (
	domainOnce sync.Once

	// SalesTotal counts finalized sales by payment method.
	SalesTotal *prometheus.CounterVec
	// OrdersTotal counts order state transitions.
	OrdersTotal *prometheus.CounterVec
	// CashMovesTotal counts appended cash ledger moves by type.
	CashMovesTotal *prometheus.CounterVec
	// DocSyncTotal tracks remote document sync outcomes.
	DocSyncTotal *prometheus.CounterVec
	// DomainEventsTotal counts emitted domain events by topic.
	DomainEventsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the domain
// collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SalesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Count of finalized sales by payment method.",
		}, []string{"method"})
		OrdersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Count of order transitions by kind.",
		}, []string{"transition"})
		CashMovesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cash_moves_total",
			Help:      "Count of cash ledger moves by type.",
		}, []string{"type"})
		DocSyncTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doc_sync_total",
			Help:      "Count of remote document sync outcomes.",
		}, []string{"result"})
		DomainEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Count of emitted domain events by topic.",
		}, []string{"topic"})

		registerOrReuse(reg, SalesTotal, func(c prometheus.Collector) {
			if v, ok := c.(*prometheus.CounterVec); ok {
				SalesTotal = v
			}
		})
		registerOrReuse(reg, OrdersTotal, func(c prometheus.Collector) {
			if v, ok := c.(*prometheus.CounterVec); ok {
				OrdersTotal = v
			}
		})
		registerOrReuse(reg, CashMovesTotal, func(c prometheus.Collector) {
			if v, ok := c.(*prometheus.CounterVec); ok {
				CashMovesTotal = v
			}
		})
		registerOrReuse(reg, DocSyncTotal, func(c prometheus.Collector) {
			if v, ok := c.(*prometheus.CounterVec); ok {
				DocSyncTotal = v
			}
		})
		registerOrReuse(reg, DomainEventsTotal, func(c prometheus.Collector) {
			if v, ok := c.(*prometheus.CounterVec); ok {
				DomainEventsTotal = v
			}
		})
	})
}

// EventCounter is an events.Notifier that counts emitted events.
type EventCounter struct{}

func (EventCounter) Notify(_ context.Context, event events.Event) error {
	if DomainEventsTotal != nil {
		DomainEventsTotal.WithLabelValues(event.Topic).Inc()
	}
	return nil
}
