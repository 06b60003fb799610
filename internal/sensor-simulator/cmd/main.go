package main

import (
	"context"
	"flag"
	"log"
	"time"

	sensorSimulator "github.com/fieldscout/fieldscout/internal/sensor-simulator"

	"github.com/fieldscout/fieldscout/internal/config"
	"github.com/fieldscout/fieldscout/pkg/mqtt"
)

func main() {
	sensorID := flag.String("sensor-id", "sensor1", "unique sensor identifier")
	fieldID := flag.String("field-id", "field1", "unique field identifier")
	clientID := flag.String("client-id", "soilSensor1", "MQTT client ID")
	interval := flag.Duration("interval", 10*time.Second, "publish interval")
	lat := flag.Float64("lat", 41.51109, "latitude for the SoilGrids seed")
	lon := flag.Float64("lon", 12.37007, "longitude for the SoilGrids seed")
	step := flag.Float64("step", 0, "walk step as fraction of parameter range (0 = default)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random walk seed")
	profilePath := flag.String("profile", "", "regional profile YAML (empty = built-in defaults)")
	brokerHost := flag.String("broker-host", "localhost", "MQTT broker host")
	brokerPort := flag.Int("broker-port", 1883, "MQTT broker port")
	flag.Parse()

	profile := config.Default()
	if *profilePath != "" {
		p, err := config.Load(*profilePath)
		if err != nil {
			log.Fatalf("profile: %v", err)
		}
		profile = *p
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqtt.NewConn(ctx, &mqtt.Config{
		Host:     *brokerHost,
		Port:     *brokerPort,
		User:     "guest",
		Password: "guest",
		ClientID: *clientID,
	})
	if err != nil {
		log.Fatal(err)
	}

	publisher := mqtt.NewPublisher(client, "sensor/soil")
	generator := sensorSimulator.NewDataGenerator(profile.Soil, *step, *seed)

	seedCtx, seedCancel := context.WithTimeout(ctx, 10*time.Second)
	generator.SeedFromSoilGrids(seedCtx, *lat, *lon)
	seedCancel()

	sim := sensorSimulator.NewSensorSimulator(publisher, generator, *fieldID, *sensorID)
	sim.Start(ctx, *interval)
}
