package model

// Canonical soil parameter names. Every reading published by the sensor
// simulator carries exactly this set; the evaluator refuses readings that
// lack a parameter its profile knows about.
const (
	ParamMoisture    = "moisture"
	ParamPH          = "ph"
	ParamNitrogen    = "nitrogen"
	ParamPhosphorus  = "phosphorus"
	ParamPotassium   = "potassium"
	ParamTemperature = "temperature"
)

// SoilParameters lists the monitored parameters in canonical order.
// Conditions and recommendations are always emitted in this order.
var SoilParameters = []string{
	ParamMoisture,
	ParamPH,
	ParamNitrogen,
	ParamPhosphorus,
	ParamPotassium,
	ParamTemperature,
}

// SoilReading is one sample from the (simulated) soil sensor.
// Timestamp is ISO-8601; Values maps parameter name to the measured value.
type SoilReading struct {
	FieldID   string             `json:"field_id"`
	SensorID  string             `json:"sensor_id"`
	Timestamp string             `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// ConditionBand is the categorical classification of one soil parameter.
type ConditionBand string

const (
	BandLow        ConditionBand = "low"
	BandHigh       ConditionBand = "high"
	BandOptimal    ConditionBand = "optimal"
	BandSuboptimal ConditionBand = "suboptimal"
)

// Recommendation is a corrective action for a non-optimal parameter.
type Recommendation struct {
	Parameter    string        `json:"parameter"`
	CurrentValue float64       `json:"current_value"`
	Condition    ConditionBand `json:"condition"`
	Action       string        `json:"action"`
}

// SoilAnalysis is the evaluator output for one reading. A fresh value is
// built per call and never mutated afterwards; Recommendations follow the
// canonical parameter order.
type SoilAnalysis struct {
	FieldID         string                   `json:"field_id"`
	SensorID        string                   `json:"sensor_id"`
	Timestamp       string                   `json:"timestamp"`
	Conditions      map[string]ConditionBand `json:"conditions"`
	Recommendations []Recommendation         `json:"recommendations"`
}
