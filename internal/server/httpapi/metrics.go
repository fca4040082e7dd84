package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Metrics holds the auth request counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodfinder_auth_requests_total",
			Help: "Auth requests by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
	m.registry.MustRegister(m.requests)
	return m
}

func (m *Metrics) observe(op, outcome string) {
	m.requests.WithLabelValues(op, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
