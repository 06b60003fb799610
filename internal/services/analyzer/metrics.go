package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the analyzer's message flow.
type Metrics struct {
	ReadingsTotal        prometheus.Counter
	DuplicatesTotal      prometheus.Counter
	FailuresTotal        prometheus.Counter
	RecommendationsTotal prometheus.Counter
	ProfileReloadsTotal  prometheus.Counter
}

// NewMetrics registers the analyzer counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReadingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_readings_total",
			Help: "Soil readings accepted for evaluation.",
		}),
		DuplicatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_duplicate_readings_total",
			Help: "Readings dropped as redeliveries.",
		}),
		FailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_evaluation_failures_total",
			Help: "Readings that failed to decode or evaluate.",
		}),
		RecommendationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_recommendations_total",
			Help: "Recommendations emitted across all analyses.",
		}),
		ProfileReloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_profile_reloads_total",
			Help: "Threshold profile hot reloads applied.",
		}),
	}
}
