package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldscout/fieldscout/internal/services/report/app"
)

func main() {
	cfg := loadConfig()

	reg := prometheus.NewRegistry()
	gw := app.NewGateway(app.Config{
		PersistenceBaseURL: cfg.PersistenceURL,
		SoilPath:           cfg.SoilPath,
		VegetationPath:     cfg.VegetationPath,
		HTTPTimeout:        cfg.timeout(),
		BreakerFailures:    uint32(cfg.CBFailures),
		BreakerOpenFor:     cfg.breakerOpenFor(),
	}, app.NewMetrics(reg))

	mux := http.NewServeMux()
	mux.HandleFunc("/report", gw.HandleReport)
	mux.HandleFunc("/healthz", gw.HandleHealth)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	addr := ":" + cfg.Port
	log.Printf("report gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
