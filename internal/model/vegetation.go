package model

// HealthMetrics is the scorer output for one aerial frame.
// HealthScore is 0-100; AvgSaturation is on the 0-255 channel scale.
type HealthMetrics struct {
	CoveragePct   float64 `json:"vegetation_coverage_pct"`
	AvgSaturation float64 `json:"average_saturation"`
	HealthScore   float64 `json:"health_score"`
}

// DiseaseFinding is the opaque classifier verdict for a frame. The
// classification algorithm is an external collaborator; we only carry
// its label and confidence through the pipeline.
type DiseaseFinding struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// HealthReport is published by the imagery service after each capture
// cycle: vegetation metrics plus the optional disease verdict.
// NoVegetation marks a frame with zero vegetation pixels, so consumers
// can tell a bare field from a real zero score.
type HealthReport struct {
	FieldID      string          `json:"field_id"`
	Timestamp    string          `json:"timestamp"`
	Metrics      HealthMetrics   `json:"metrics"`
	NoVegetation bool            `json:"no_vegetation,omitempty"`
	Disease      *DiseaseFinding `json:"disease,omitempty"`
}
