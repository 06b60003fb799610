// Package persistence stores published analyses in InfluxDB and serves
// them back over HTTP for the report gateway.
package persistence

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/fieldscout/fieldscout/internal/model"
	"github.com/fieldscout/fieldscout/pkg/dedup"
	"github.com/fieldscout/fieldscout/pkg/mqtt"
)

const (
	soilMeasurement = "soil_analysis"
	vegMeasurement  = "vegetation_health"

	timeLayout = "2006-01-02T15:04:05"
)

// PointSink receives normalized points. *Writer is the production sink.
type PointSink interface {
	WritePoint(kind string, p *write.Point)
}

// Service consumes analysis topics, writes points and keeps an in-memory
// latest cache as a fallback for reads when Influx is unreachable.
type Service struct {
	consumer mqtt.IConsumer[model.SoilAnalysis]
	sink     PointSink
	deduper  *dedup.Deduper

	mu         sync.RWMutex
	latestSoil map[string]model.SoilAnalysis // keyed by SensorID
	latestVeg  map[string]model.HealthReport // keyed by FieldID
}

func NewService(consumer mqtt.IConsumer[model.SoilAnalysis], sink PointSink, deduper *dedup.Deduper) *Service {
	return &Service{
		consumer:   consumer,
		sink:       sink,
		deduper:    deduper,
		latestSoil: make(map[string]model.SoilAnalysis),
		latestVeg:  make(map[string]model.HealthReport),
	}
}

// Handle routes one message by topic. Bad payloads are logged and dropped
// so one malformed producer cannot stall the stream.
func (s *Service) Handle(topic string, msg paho.Message) error {
	if topic == "" {
		topic = msg.Topic()
	}
	payload := msg.Payload()
	if !s.deduper.ShouldProcess(dedup.Key(payload)) {
		return nil
	}

	switch {
	case strings.HasPrefix(topic, "analysis/soil"):
		var a model.SoilAnalysis
		if err := json.Unmarshal(payload, &a); err != nil {
			log.Printf("persistence: invalid soil analysis on %s: %v", topic, err)
			return nil
		}
		s.sink.WritePoint(soilMeasurement, SoilToPoint(a))
		s.mu.Lock()
		s.latestSoil[a.SensorID] = a
		s.mu.Unlock()

	case strings.HasPrefix(topic, "analysis/vegetation"):
		var r model.HealthReport
		if err := json.Unmarshal(payload, &r); err != nil {
			log.Printf("persistence: invalid health report on %s: %v", topic, err)
			return nil
		}
		s.sink.WritePoint(vegMeasurement, VegToPoint(r))
		s.mu.Lock()
		s.latestVeg[r.FieldID] = r
		s.mu.Unlock()
	}
	return nil
}

// Start injects the handler and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(s.Handle)
	s.consumer.Consume(ctx)
}

// LatestSoil returns the cached analyses sorted by sensor id.
func (s *Service) LatestSoil() []model.SoilAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SoilAnalysis, 0, len(s.latestSoil))
	for _, a := range s.latestSoil {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SensorID < out[j].SensorID })
	return out
}

// LatestVegetation returns the cached health reports sorted by field id.
func (s *Service) LatestVegetation() []model.HealthReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.HealthReport, 0, len(s.latestVeg))
	for _, r := range s.latestVeg {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldID < out[j].FieldID })
	return out
}

// parseStamp falls back to ingest time when the producer stamp is unusable.
func parseStamp(ts string) time.Time {
	if t, err := time.Parse(timeLayout, ts); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

// SoilToPoint normalizes one analysis into an Influx point. Conditions
// become string fields so Flux dashboards can filter on them.
func SoilToPoint(a model.SoilAnalysis) *write.Point {
	tags := map[string]string{}
	if a.FieldID != "" {
		tags["field_id"] = a.FieldID
	}
	if a.SensorID != "" {
		tags["sensor_id"] = a.SensorID
	}

	fields := map[string]interface{}{
		"recommendation_count": int64(len(a.Recommendations)),
	}
	for param, band := range a.Conditions {
		fields["condition_"+param] = string(band)
	}

	return influxdb2.NewPoint(soilMeasurement, tags, fields, parseStamp(a.Timestamp))
}

// VegToPoint normalizes one health report into an Influx point.
func VegToPoint(r model.HealthReport) *write.Point {
	tags := map[string]string{}
	if r.FieldID != "" {
		tags["field_id"] = r.FieldID
	}

	fields := map[string]interface{}{
		"vegetation_coverage_pct": r.Metrics.CoveragePct,
		"average_saturation":      r.Metrics.AvgSaturation,
		"health_score":            r.Metrics.HealthScore,
	}
	if r.NoVegetation {
		fields["no_vegetation"] = true
	}
	if r.Disease != nil {
		fields["disease_label"] = r.Disease.Label
		fields["disease_confidence"] = r.Disease.Confidence
	}

	return influxdb2.NewPoint(vegMeasurement, tags, fields, parseStamp(r.Timestamp))
}
