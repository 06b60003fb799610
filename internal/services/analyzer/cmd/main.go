package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldscout/fieldscout/internal/analysis/soil"
	"github.com/fieldscout/fieldscout/internal/config"
	"github.com/fieldscout/fieldscout/internal/services/analyzer"
	"github.com/fieldscout/fieldscout/pkg/dedup"
	"github.com/fieldscout/fieldscout/pkg/mqtt"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &mqtt.Config{
		Host:     env("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     env("MQTT_USER", "guest"),
		Password: env("MQTT_PASSWORD", "guest"),
		ClientID: fmt.Sprintf("analyzer-%s", env("HOSTNAME", "local")),
	}
	client, err := mqtt.NewConn(ctx, cfg)
	if err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}
	defer mqtt.CloseConn(client)

	profile := config.Default()
	profilePath := env("PROFILE_PATH", "")
	if profilePath != "" {
		p, err := config.Load(profilePath)
		if err != nil {
			log.Fatalf("profile load failed: %v", err)
		}
		profile = *p
	}

	eval, err := soil.NewEvaluator(profile.Soil)
	if err != nil {
		log.Fatalf("evaluator init: %v", err)
	}

	consumer := mqtt.NewConsumer(client, env("READING_SUB_TOPIC", "sensor/soil"), nil)
	publisher := mqtt.NewPublisher(client, env("ANALYSIS_PUB_TOPIC", "analysis/soil"))

	reg := prometheus.NewRegistry()
	svc := analyzer.NewService(consumer, publisher, eval, dedup.New(0, 0), analyzer.NewMetrics(reg))

	if profilePath != "" {
		go func() {
			err := config.Watch(ctx, profilePath, func(p *config.Profile) {
				if err := svc.SwapProfile(p.Soil); err != nil {
					log.Printf("profile swap rejected: %v", err)
				}
			})
			if err != nil {
				log.Printf("profile watch stopped: %v", err)
			}
		}()
	}

	metricsAddr := env("METRICS_ADDR", ":9102")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		log.Printf("analyzer: metrics on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server: %v", err)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	log.Println("analyzer service is running...")
	svc.Start(ctx)
}
