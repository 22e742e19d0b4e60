package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// LoginsInitiated counts authorization flows started via /login.
	LoginsInitiated prometheus.Counter

	// CallbackOutcomes counts callback results by outcome label
	// (success, csrf_mismatch, exchange_failed, identity_failed).
	CallbackOutcomes *prometheus.CounterVec

	// AccessDecisions counts access checks by decision label
	// (allowed, denied, anonymous).
	AccessDecisions *prometheus.CounterVec
}

// New creates the gateway metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		LoginsInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_logins_initiated_total",
			Help: "Authorization flows started.",
		}),
		CallbackOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_callbacks_total",
			Help: "OAuth2 callback results by outcome.",
		}, []string{"outcome"}),
		AccessDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_access_decisions_total",
			Help: "Access checks by decision.",
		}, []string{"decision"}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
