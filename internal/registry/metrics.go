package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for registry activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations       *prometheus.CounterVec
	persistFailures prometheus.Counter
	players         prometheus.Gauge
	rosterChunks    prometheus.Histogram
}

// NewMetrics registers the registry collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gideon_registry_mutations_total",
				Help: "persisted registry mutations by operation",
			},
			[]string{"op"},
		),
		persistFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gideon_registry_persist_failures_total",
				Help: "failed writes of the registry document",
			},
		),
		players: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gideon_registry_players",
				Help: "number of registered players",
			},
		),
		rosterChunks: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gideon_roster_chunks",
				Help:    "chunks produced per roster composition",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
			},
		),
	}
}

// ObserveRoster records the chunk count of one composed roster
func (m *Metrics) ObserveRoster(chunks int) {
	if m == nil {
		return
	}
	m.rosterChunks.Observe(float64(chunks))
}

func (m *Metrics) incMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) incPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) setPlayers(n int) {
	if m == nil {
		return
	}
	m.players.Set(float64(n))
}
