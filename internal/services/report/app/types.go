package app

import "github.com/fieldscout/fieldscout/internal/model"

// Farm status levels, worst wins.
const (
	StatusHealthy   = "healthy"
	StatusAttention = "attention"
	StatusCritical  = "critical"
	StatusUnknown   = "unknown"
)

// SoilSummary aggregates the latest per-sensor analyses.
type SoilSummary struct {
	Sensors              []model.SoilAnalysis `json:"sensors"`
	SensorsNeedingAction int                  `json:"sensors_needing_action"`
	TotalRecommendations int                  `json:"total_recommendations"`
}

// VegetationSummary aggregates the latest per-field health reports.
type VegetationSummary struct {
	Fields       []model.HealthReport `json:"fields"`
	MeanScore    float64              `json:"mean_score"`
	MinScore     float64              `json:"min_score"`
	MaxScore     float64              `json:"max_score"`
	MeanCoverage float64              `json:"mean_coverage"`
}

// FarmReport is the combined farm-health view served on /report.
type FarmReport struct {
	GeneratedAt string            `json:"generated_at"`
	Status      string            `json:"status"`
	Degraded    []string          `json:"degraded,omitempty"`
	Soil        SoilSummary       `json:"soil"`
	Vegetation  VegetationSummary `json:"vegetation"`
}
