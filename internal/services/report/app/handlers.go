package app

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/fieldscout/fieldscout/internal/model"
)

// HandleReport fetches both upstreams in parallel and aggregates them.
// A failed upstream degrades the report to its last good payload rather
// than failing the whole request.
func (g *Gateway) HandleReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	g.metrics.ReportsTotal.Inc()

	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	var (
		soil     []model.SoilAnalysis
		veg      []model.HealthReport
		soilErr  error
		vegErr   error
		done     = make(chan struct{})
		degraded []string
	)
	go func() {
		soilErr = g.soil.GetJSON(ctx, &soil)
		done <- struct{}{}
	}()
	go func() {
		vegErr = g.vegetation.GetJSON(ctx, &veg)
		done <- struct{}{}
	}()
	<-done
	<-done

	// Cache slices are cloned in both directions so buildReport only ever
	// sorts a request-local backing array.
	g.mu.Lock()
	if soilErr != nil {
		g.metrics.UpstreamFailures.WithLabelValues("soil").Inc()
		g.cfg.Logger.Printf("report: soil upstream failed, serving cached: %v", soilErr)
		soil = append([]model.SoilAnalysis(nil), g.lastSoil...)
		degraded = append(degraded, "soil")
	} else {
		g.lastSoil = append([]model.SoilAnalysis(nil), soil...)
	}
	if vegErr != nil {
		g.metrics.UpstreamFailures.WithLabelValues("vegetation").Inc()
		g.cfg.Logger.Printf("report: vegetation upstream failed, serving cached: %v", vegErr)
		veg = append([]model.HealthReport(nil), g.lastVeg...)
		degraded = append(degraded, "vegetation")
	} else {
		g.lastVeg = append([]model.HealthReport(nil), veg...)
	}
	g.mu.Unlock()

	report := buildReport(soil, veg, degraded)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)

	g.cfg.Logger.Printf("GET /report [%dms] cb[soil]=%v cb[veg]=%v sensors=%d fields=%d status=%s",
		time.Since(start).Milliseconds(), g.soil.State(), g.vegetation.State(),
		len(report.Soil.Sensors), len(report.Vegetation.Fields), report.Status)
}

func buildReport(soil []model.SoilAnalysis, veg []model.HealthReport, degraded []string) FarmReport {
	if soil == nil {
		soil = []model.SoilAnalysis{}
	}
	if veg == nil {
		veg = []model.HealthReport{}
	}
	sort.Slice(soil, func(i, j int) bool { return soil[i].SensorID < soil[j].SensorID })
	sort.Slice(veg, func(i, j int) bool { return veg[i].FieldID < veg[j].FieldID })

	ss := SoilSummary{Sensors: soil}
	for _, a := range soil {
		ss.TotalRecommendations += len(a.Recommendations)
		if len(a.Recommendations) > 0 {
			ss.SensorsNeedingAction++
		}
	}

	vs := VegetationSummary{Fields: veg}
	if len(veg) > 0 {
		scores := make(stats.Float64Data, 0, len(veg))
		coverages := make(stats.Float64Data, 0, len(veg))
		for _, f := range veg {
			scores = append(scores, f.Metrics.HealthScore)
			coverages = append(coverages, f.Metrics.CoveragePct)
		}
		vs.MeanScore, _ = stats.Mean(scores)
		vs.MinScore, _ = stats.Min(scores)
		vs.MaxScore, _ = stats.Max(scores)
		vs.MeanCoverage, _ = stats.Mean(coverages)
	}

	return FarmReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Status:      overallStatus(ss, vs),
		Degraded:    degraded,
		Soil:        ss,
		Vegetation:  vs,
	}
}

// overallStatus folds both summaries into one level, worst wins.
func overallStatus(ss SoilSummary, vs VegetationSummary) string {
	if len(ss.Sensors) == 0 && len(vs.Fields) == 0 {
		return StatusUnknown
	}

	critical := false
	for _, a := range ss.Sensors {
		if len(a.Recommendations) >= 3 {
			critical = true
			break
		}
	}
	if len(vs.Fields) > 0 && vs.MeanScore < 40 {
		critical = true
	}
	if critical {
		return StatusCritical
	}

	if ss.TotalRecommendations > 0 {
		return StatusAttention
	}
	if len(vs.Fields) > 0 && vs.MeanScore < 70 {
		return StatusAttention
	}
	return StatusHealthy
}

// HandleHealth reports liveness and the breaker states.
func (g *Gateway) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status            string `json:"status"`
		SoilBreaker       string `json:"soil_breaker"`
		VegetationBreaker string `json:"vegetation_breaker"`
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status{
		Status:            "ok",
		SoilBreaker:       g.soil.State().String(),
		VegetationBreaker: g.vegetation.State().String(),
	})
}
