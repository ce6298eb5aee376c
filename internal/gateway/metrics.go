package gateway

import "github.com/prometheus/client_golang/prometheus"

// Request outcome labels.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeGlobal   = "global"
	outcomeNetwork  = "network"
	outcomeCanceled = "canceled"
	outcomeExpired  = "expired"
)

// Metrics counts gateway traffic. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	renewals *prometheus.CounterVec
}

// NewMetrics registers gateway collectors on reg. It returns nil when reg
// is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ronin",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Logical requests sent through the gateway by outcome.",
		}, []string{"outcome"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ronin",
			Subsystem: "gateway",
			Name:      "renewals_total",
			Help:      "Token renewal calls issued by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.renewals)
	return m
}

func (m *Metrics) request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) renewal(outcome renewOutcome) {
	if m == nil {
		return
	}
	m.renewals.WithLabelValues(outcome.String()).Inc()
}
