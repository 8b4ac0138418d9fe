package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AttemptsBlocked     *prometheus.CounterVec
	DocumentsReviewed   *prometheus.CounterVec
	AggregateTransition *prometheus.CounterVec
	Downgrades          prometheus.Counter
	PostsDenied         *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		AttemptsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustplane_attempts_blocked_total",
			Help: "Total number of attempts blocked by the rate limiter",
		}, []string{"flow"}),
		DocumentsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustplane_documents_reviewed_total",
			Help: "Total number of verification documents reviewed",
		}, []string{"decision"}),
		AggregateTransition: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustplane_aggregate_transitions_total",
			Help: "Total number of aggregate verification transitions",
		}, []string{"direction"}),
		Downgrades: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustplane_subscription_downgrades_total",
			Help: "Total number of lazy subscription downgrades",
		}),
		PostsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trustplane_posts_denied_total",
			Help: "Total number of listing creations denied",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncAttemptBlocked(flow string) {
	m.AttemptsBlocked.WithLabelValues(flow).Inc()
}

func (m *Metrics) IncDocumentReviewed(decision string) {
	m.DocumentsReviewed.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncAggregateTransition(up bool) {
	direction := "unverified"
	if up {
		direction = "verified"
	}
	m.AggregateTransition.WithLabelValues(direction).Inc()
}

func (m *Metrics) IncDowngrade() {
	m.Downgrades.Inc()
}

func (m *Metrics) IncPostDenied(reason string) {
	m.PostsDenied.WithLabelValues(reason).Inc()
}
