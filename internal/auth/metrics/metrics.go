package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for client authentication.
type Metrics struct {
	ClientsRegistered prometheus.Counter
	Logins            *prometheus.CounterVec
	TokensRejected    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClientsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceguard_clients_registered_total",
			Help: "Total number of API clients registered",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_client_logins_total",
			Help: "Client login attempts, labeled by outcome",
		}, []string{"outcome"}),
		TokensRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceguard_tokens_rejected_total",
			Help: "Bearer tokens that matched no registered client",
		}),
	}
}

func (m *Metrics) IncrementClientsRegistered() {
	m.ClientsRegistered.Inc()
}

func (m *Metrics) IncrementLogins(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTokensRejected() {
	m.TokensRejected.Inc()
}
