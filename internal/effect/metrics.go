package effect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the scheduler's Prometheus collectors.
// A nil *Metrics records nothing.
type Metrics struct {
	scheduled *prometheus.CounterVec
	fired     prometheus.Counter
	cancelled prometheus.Counter
	inFlight  prometheus.Gauge
}

// NewMetrics creates the scheduler collectors and registers them with reg.
// Passing nil registers nothing, which suits tests that build many stores.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		scheduled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reflux",
			Name:      "effects_scheduled_total",
			Help:      "Total number of effects handed to the scheduler, by kind.",
		}, []string{"kind"}),
		fired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reflux",
			Name:      "effects_fired_total",
			Help:      "Total number of delayed effects that fired and redispatched an action.",
		}),
		cancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reflux",
			Name:      "effects_cancelled_total",
			Help:      "Total number of in-flight effects stopped before firing.",
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reflux",
			Name:      "effects_in_flight",
			Help:      "Number of delayed effects currently waiting on the clock.",
		}),
	}
}

func (m *Metrics) observeScheduled(kind Kind) {
	if m == nil {
		return
	}
	m.scheduled.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeFired() {
	if m == nil {
		return
	}
	m.fired.Inc()
}

func (m *Metrics) observeCancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

func (m *Metrics) setInFlight(n int) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(n))
}
