package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsTotal *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		EventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uplift_webhook_events_total",
			Help: "Webhook events by outcome",
		}, []string{"provider", "outcome"}),
	}
}

func (m *Metrics) RecordOutcome(provider, outcome string) {
	m.EventsTotal.WithLabelValues(provider, outcome).Inc()
}
