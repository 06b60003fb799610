package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fieldscout/fieldscout/internal/analysis/vegetation"
	"github.com/fieldscout/fieldscout/internal/config"
	"github.com/fieldscout/fieldscout/internal/drone"
	"github.com/fieldscout/fieldscout/internal/services/imagery"
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

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
		ClientID: fmt.Sprintf("imagery-%s", env("HOSTNAME", "local")),
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

	scorer, err := vegetation.NewScorer(profile.Vegetation)
	if err != nil {
		log.Fatalf("scorer init: %v", err)
	}

	// Synthetic frames stand in for the camera feed.
	vegFraction := envFloat("VEG_FRACTION", 0.6)
	ctrl := drone.NewController(drone.SyntheticFrames(vegFraction, time.Now().UnixNano()))

	var classifier imagery.Classifier = imagery.NoopClassifier{}
	if url := env("CLASSIFIER_URL", ""); url != "" {
		classifier = imagery.NewHTTPClassifier(url, 5*time.Second)
	}

	publisher := mqtt.NewPublisher(client, env("REPORT_PUB_TOPIC", "analysis/vegetation"))
	interval := time.Duration(envInt("SURVEY_INTERVAL_SEC", 300)) * time.Second

	svc := imagery.NewService(ctrl, scorer, classifier, publisher, env("FIELD_ID", "field1"), interval)

	if profilePath != "" {
		go func() {
			err := config.Watch(ctx, profilePath, func(p *config.Profile) {
				if err := svc.SwapConfig(p.Vegetation); err != nil {
					log.Printf("config swap rejected: %v", err)
				}
			})
			if err != nil {
				log.Printf("profile watch stopped: %v", err)
			}
		}()
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	log.Println("imagery service is running...")
	svc.Start(ctx)
}
