package pool

import "github.com/prometheus/client_golang/prometheus"

// metrics groups the Prometheus instruments a Pool exposes. Grounded on the
// teacher's prometheus/client_golang wiring (observability package,
// deleted — see DESIGN.md — but its use of client_golang is carried here).
type metrics struct {
	created  prometheus.Counter
	recycled prometheus.Counter
	size     prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vlistengine_pool_cells_created_total",
			Help: "Number of render cells created by an element pool.",
		}),
		recycled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vlistengine_pool_cells_recycled_total",
			Help: "Number of render cells recycled (acquired from idle) by an element pool.",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vlistengine_pool_size",
			Help: "Current number of cells tracked by an element pool.",
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.created, m.recycled, m.size}
}
