package metrics

import (
	"net/http"

	"bid_pricing/internal/usecase/interfaces"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bid_pricing"

// SyncMetrics counts store round trips by operation and outcome.
type SyncMetrics struct {
	registry *prometheus.Registry

	aggregatePersists *prometheus.CounterVec
	itemSyncs         *prometheus.CounterVec
}

var _ interfaces.ISyncMetrics = (*SyncMetrics)(nil)

// NewSyncMetrics registers the collectors on a private registry, alongside
// the process and Go runtime collectors.
func NewSyncMetrics() *SyncMetrics {
	m := &SyncMetrics{
		registry: prometheus.NewRegistry(),
		aggregatePersists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_persist_total",
			Help:      "Bid total persist attempts by outcome.",
		}, []string{"outcome"}),
		itemSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_sync_total",
			Help:      "Item store calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	m.registry.MustRegister(
		m.aggregatePersists,
		m.itemSyncs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *SyncMetrics) ObserveAggregatePersist(outcome string) {
	m.aggregatePersists.WithLabelValues(outcome).Inc()
}

func (m *SyncMetrics) ObserveItemSync(operation, outcome string) {
	m.itemSyncs.WithLabelValues(operation, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
