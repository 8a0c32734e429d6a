package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups the service's prometheus instruments.
type Collectors struct {
	Operations      *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	AnswersAccepted *prometheus.CounterVec
	LiveSubscribers prometheus.Gauge
}

// New registers the collectors on reg. A nil reg leaves them unregistered, which tests rely on.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "operations_total",
			Help:      "Operations that passed the validation gate, by operation name.",
		}, []string{"operation"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "operation_rejections_total",
			Help:      "Operations rejected by the validation gate, by operation name and error code.",
		}, []string{"operation", "code"}),
		AnswersAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "live",
			Name:      "answers_accepted_total",
			Help:      "Live answers recorded, by item kind.",
		}, []string{"kind"}),
		LiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quiz",
			Subsystem: "live",
			Name:      "subscribers",
			Help:      "Open tally subscriptions.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.Operations, c.Rejections, c.AnswersAccepted, c.LiveSubscribers)
	}
	return c
}
