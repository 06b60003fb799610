// Package analyzer turns raw soil readings into condition analyses with
// actionable recommendations and republishes them for downstream storage.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/fieldscout/fieldscout/internal/analysis/soil"
	"github.com/fieldscout/fieldscout/internal/model"
	"github.com/fieldscout/fieldscout/pkg/dedup"
	"github.com/fieldscout/fieldscout/pkg/mqtt"
)

// Service consumes soil readings, evaluates them against the active
// threshold profile and publishes the resulting analyses.
type Service struct {
	consumer  mqtt.IConsumer[model.SoilReading]
	publisher mqtt.IPublisher
	deduper   *dedup.Deduper
	metrics   *Metrics

	mu   sync.RWMutex
	eval *soil.Evaluator
}

func NewService(consumer mqtt.IConsumer[model.SoilReading], publisher mqtt.IPublisher, eval *soil.Evaluator, deduper *dedup.Deduper, metrics *Metrics) *Service {
	return &Service{
		consumer:  consumer,
		publisher: publisher,
		deduper:   deduper,
		metrics:   metrics,
		eval:      eval,
	}
}

// SwapProfile replaces the evaluator with one built from p. Readings in
// flight finish against the old thresholds; the next one sees the new.
func (s *Service) SwapProfile(p soil.Profile) error {
	eval, err := soil.NewEvaluator(p)
	if err != nil {
		return fmt.Errorf("analyzer: rejected profile: %w", err)
	}
	s.mu.Lock()
	s.eval = eval
	s.mu.Unlock()
	s.metrics.ProfileReloadsTotal.Inc()
	log.Println("analyzer: threshold profile swapped")
	return nil
}

func (s *Service) evaluator() *soil.Evaluator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eval
}

func (s *Service) messageHandler(_ string, message paho.Message) error {
	payload := message.Payload()
	if !s.deduper.ShouldProcess(dedup.Key(payload)) {
		s.metrics.DuplicatesTotal.Inc()
		return nil
	}

	var reading model.SoilReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		s.metrics.FailuresTotal.Inc()
		log.Printf("analyzer: bad reading payload: %v", err)
		return err
	}
	s.metrics.ReadingsTotal.Inc()

	analysis, err := s.evaluator().Evaluate(reading)
	if err != nil {
		s.metrics.FailuresTotal.Inc()
		log.Printf("analyzer: evaluation failed for sensor %s: %v", reading.SensorID, err)
		return err
	}
	s.metrics.RecommendationsTotal.Add(float64(len(analysis.Recommendations)))

	b, err := json.Marshal(analysis)
	if err != nil {
		s.metrics.FailuresTotal.Inc()
		return fmt.Errorf("analyzer: marshal analysis: %w", err)
	}
	if err := s.publisher.Publish(b); err != nil {
		s.metrics.FailuresTotal.Inc()
		return err
	}

	log.Printf("analyzer: published analysis for sensor %s (%d recommendations)", reading.SensorID, len(analysis.Recommendations))
	return nil
}

// Start injects the handler and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(s.messageHandler)

	go s.consumer.Consume(ctx)

	<-ctx.Done()
	s.publisher.Close()
}
