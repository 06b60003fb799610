// Package imagery flies survey missions over a field, scores the captured
// frames for vegetation health and publishes the reports.
package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fieldscout/fieldscout/internal/analysis/vegetation"
	"github.com/fieldscout/fieldscout/internal/drone"
	"github.com/fieldscout/fieldscout/internal/model"
	"github.com/fieldscout/fieldscout/pkg/mqtt"
)

const (
	captureWidth  = 320
	captureHeight = 240
	scoreWidth    = 160
	scoreHeight   = 120

	timeLayout = "2006-01-02T15:04:05"
)

// Service orchestrates one survey cycle: mission, capture, preprocessing,
// scoring, optional disease classification, publish.
type Service struct {
	drone      *drone.Controller
	classifier Classifier
	publisher  mqtt.IPublisher
	fieldID    string
	interval   time.Duration

	mu     sync.RWMutex
	scorer *vegetation.Scorer
}

func NewService(ctrl *drone.Controller, scorer *vegetation.Scorer, classifier Classifier, publisher mqtt.IPublisher, fieldID string, interval time.Duration) *Service {
	if classifier == nil {
		classifier = NoopClassifier{}
	}
	return &Service{
		drone:      ctrl,
		classifier: classifier,
		publisher:  publisher,
		fieldID:    fieldID,
		interval:   interval,
		scorer:     scorer,
	}
}

// SwapConfig replaces the scorer with one built from cfg.
func (s *Service) SwapConfig(cfg vegetation.Config) error {
	scorer, err := vegetation.NewScorer(cfg)
	if err != nil {
		return fmt.Errorf("imagery: rejected config: %w", err)
	}
	s.mu.Lock()
	s.scorer = scorer
	s.mu.Unlock()
	log.Println("imagery: scorer config swapped")
	return nil
}

func (s *Service) score(img *vegetation.Image) (model.HealthMetrics, error) {
	s.mu.RLock()
	scorer := s.scorer
	s.mu.RUnlock()
	return scorer.Score(img)
}

// ProcessFrame preprocesses one captured frame and builds its health
// report. A frame with no detectable vegetation still yields a report;
// its zero metrics record the bare field.
func (s *Service) ProcessFrame(ctx context.Context, img *vegetation.Image) (*model.HealthReport, error) {
	resized, err := vegetation.Resize(img, scoreWidth, scoreHeight)
	if err != nil {
		return nil, fmt.Errorf("imagery: resize: %w", err)
	}
	prepped, err := vegetation.StretchContrast(resized)
	if err != nil {
		return nil, fmt.Errorf("imagery: contrast stretch: %w", err)
	}

	metrics, err := s.score(prepped)
	bare := errors.Is(err, vegetation.ErrEmptyVegetation)
	if err != nil && !bare {
		return nil, fmt.Errorf("imagery: score: %w", err)
	}
	if bare {
		log.Printf("imagery: no vegetation detected over %s, reporting bare field", s.fieldID)
	}

	report := &model.HealthReport{
		FieldID:      s.fieldID,
		Timestamp:    time.Now().UTC().Format(timeLayout),
		Metrics:      metrics,
		NoVegetation: bare,
	}

	finding, err := s.classifier.Classify(ctx, prepped)
	if err != nil {
		// The verdict is best effort; the report ships without it.
		log.Printf("imagery: classifier unavailable: %v", err)
	} else {
		report.Disease = finding
	}
	return report, nil
}

// Survey flies one mission, captures a frame mid-flight and publishes the
// resulting health report.
func (s *Service) Survey(ctx context.Context) error {
	missionErr := make(chan error, 1)
	go func() { missionErr <- s.drone.StartMission(ctx) }()

	img, err := s.captureWhenAirborne(ctx, missionErr)
	if err != nil {
		return err
	}

	report, err := s.ProcessFrame(ctx, img)
	if err != nil {
		<-missionErr
		return err
	}

	b, err := json.Marshal(report)
	if err != nil {
		<-missionErr
		return fmt.Errorf("imagery: marshal report: %w", err)
	}
	if err := s.publisher.Publish(b); err != nil {
		<-missionErr
		return err
	}
	log.Printf("imagery: published health report for %s (score %.1f)", s.fieldID, report.Metrics.HealthScore)

	return <-missionErr
}

// captureWhenAirborne polls until the drone is flying, then grabs a frame.
// If the mission ends first (abort or error) no frame is available.
func (s *Service) captureWhenAirborne(ctx context.Context, missionErr <-chan error) (*vegetation.Image, error) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-missionErr:
			if err == nil {
				err = drone.ErrNotFlying
			}
			return nil, fmt.Errorf("imagery: mission ended before capture: %w", err)
		case <-ctx.Done():
			<-missionErr
			return nil, ctx.Err()
		case <-ticker.C:
			img, err := s.drone.CaptureFrame(captureWidth, captureHeight)
			if errors.Is(err, drone.ErrNotFlying) {
				continue
			}
			if err != nil {
				<-missionErr
				return nil, err
			}
			return img, nil
		}
	}
}

// Start runs survey cycles on the configured interval until ctx is
// cancelled. A failed cycle is logged; the next tick retries.
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.Survey(ctx); err != nil {
		log.Printf("imagery: survey failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case <-ticker.C:
			if err := s.Survey(ctx); err != nil {
				log.Printf("imagery: survey failed: %v", err)
			}
		}
	}
}
