// Package app assembles the farm-health report from the persistence
// service's latest soil and vegetation data.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fieldscout/fieldscout/internal/model"
)

type Config struct {
	PersistenceBaseURL string
	SoilPath           string
	VegetationPath     string
	HTTPTimeout        time.Duration

	BreakerFailures uint32
	BreakerOpenFor  time.Duration

	Logger *log.Logger
}

// Metrics counts report requests and upstream trouble.
type Metrics struct {
	ReportsTotal     prometheus.Counter
	UpstreamFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "report_requests_total",
			Help: "Farm reports served.",
		}),
		UpstreamFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "report_upstream_failures_total",
			Help: "Upstream fetch failures by dependency.",
		}, []string{"upstream"}),
	}
}

type Gateway struct {
	cfg        Config
	soil       *Upstream
	vegetation *Upstream
	metrics    *Metrics

	// Last good payloads keep /report useful through short outages.
	mu       sync.Mutex
	lastSoil []model.SoilAnalysis
	lastVeg  []model.HealthReport
}

func NewGateway(cfg Config, metrics *Metrics) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	soil := NewUpstream("soil", cfg.PersistenceBaseURL, cfg.SoilPath, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor)
	veg := NewUpstream("vegetation", cfg.PersistenceBaseURL, cfg.VegetationPath, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor)
	return &Gateway{cfg: cfg, soil: soil, vegetation: veg, metrics: metrics}
}
