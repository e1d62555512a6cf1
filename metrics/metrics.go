package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ordersCreated     *prometheus.CounterVec
	statusUpdates     *prometheus.CounterVec
	projectsCompleted prometheus.Counter
}

// New creates the counters and registers them. A nil registerer uses the
// prometheus default registry.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yunshui_orders_created_total",
			Help: "Orders created by material type.",
		}, []string{"type"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yunshui_status_updates_total",
			Help: "Status updates appended by track.",
		}, []string{"track"}),
		projectsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yunshui_projects_completed_total",
			Help: "Projects marked completed by a CHECK status.",
		}),
	}
	registerer.MustRegister(m.ordersCreated, m.statusUpdates, m.projectsCompleted)
	return m
}

func (m *Metrics) OrderCreated(materialType string) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(materialType).Inc()
}

func (m *Metrics) StatusPosted(track string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(track).Inc()
}

func (m *Metrics) ProjectCompleted() {
	if m == nil {
		return
	}
	m.projectsCompleted.Inc()
}
