package sensor_simulator

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/fieldscout/fieldscout/pkg/mqtt"
)

// SensorSimulator publishes generated soil readings at a fixed interval.
type SensorSimulator struct {
	fieldID   string
	sensorID  string
	generator *DataGenerator
	publisher mqtt.IPublisher
}

func NewSensorSimulator(publisher mqtt.IPublisher, gen *DataGenerator, fieldID, sensorID string) *SensorSimulator {
	return &SensorSimulator{
		fieldID:   fieldID,
		sensorID:  sensorID,
		generator: gen,
		publisher: publisher,
	}
}

// Start runs the publish loop until ctx is cancelled.
func (s *SensorSimulator) Start(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case <-time.After(interval):
			reading := s.generator.Next(s.fieldID, s.sensorID)
			log.Printf("sensor: pub reading field=%s sensor=%s moisture=%.1f%%",
				reading.FieldID, reading.SensorID, reading.Values["moisture"])
			payload, err := json.Marshal(reading)
			if err != nil {
				log.Printf("sensor: marshal error: %v", err)
				continue
			}
			if err := s.publisher.Publish(payload); err != nil {
				log.Printf("sensor: publish error: %v", err)
			}
		}
	}
}
