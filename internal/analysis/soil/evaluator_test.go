package soil

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fieldscout/fieldscout/internal/model"
)

func optimalReading() model.SoilReading {
	return model.SoilReading{
		FieldID:   "field1",
		SensorID:  "sensor1",
		Timestamp: "2025-06-14T09:30:00",
		Values: map[string]float64{
			model.ParamMoisture:    50,
			model.ParamPH:          6.5,
			model.ParamNitrogen:    60,
			model.ParamPhosphorus:  45,
			model.ParamPotassium:   50,
			model.ParamTemperature: 25,
		},
	}
}

func mustEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(DefaultProfile())
	if err != nil {
		t.Fatalf("NewEvaluator(DefaultProfile()) = %v", err)
	}
	return e
}

func TestEvaluate_AllOptimal(t *testing.T) {
	e := mustEvaluator(t)

	analysis, err := e.Evaluate(optimalReading())
	if err != nil {
		t.Fatalf("Evaluate() = %v", err)
	}

	if len(analysis.Conditions) != len(model.SoilParameters) {
		t.Fatalf("got %d conditions, want %d", len(analysis.Conditions), len(model.SoilParameters))
	}
	for param, band := range analysis.Conditions {
		if band != model.BandOptimal {
			t.Errorf("%s = %q, want %q", param, band, model.BandOptimal)
		}
	}
	if len(analysis.Recommendations) != 0 {
		t.Errorf("got %d recommendations, want 0", len(analysis.Recommendations))
	}
	if analysis.Timestamp != "2025-06-14T09:30:00" {
		t.Errorf("Timestamp = %q, not carried over from reading", analysis.Timestamp)
	}
}

func TestEvaluate_LowMoisture(t *testing.T) {
	e := mustEvaluator(t)

	reading := optimalReading()
	reading.Values[model.ParamMoisture] = 5

	analysis, err := e.Evaluate(reading)
	if err != nil {
		t.Fatalf("Evaluate() = %v", err)
	}

	if got := analysis.Conditions[model.ParamMoisture]; got != model.BandLow {
		t.Errorf("moisture band = %q, want %q", got, model.BandLow)
	}
	if len(analysis.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v", len(analysis.Recommendations), analysis.Recommendations)
	}
	rec := analysis.Recommendations[0]
	if rec.Parameter != model.ParamMoisture || rec.CurrentValue != 5 || rec.Condition != model.BandLow {
		t.Errorf("unexpected recommendation: %+v", rec)
	}
	if rec.Action != "Increase irrigation frequency" {
		t.Errorf("Action = %q, want the irrigation-increase text", rec.Action)
	}
}

func TestClassify_Bands(t *testing.T) {
	e := mustEvaluator(t)
	// moisture threshold: min=20 max=80 optimal=50, tolerance band = 50±6
	th := Threshold{Min: 20, Max: 80, Optimal: 50}

	tests := []struct {
		name  string
		value float64
		want  model.ConditionBand
	}{
		{"well below min", -10, model.BandLow},
		{"just below min", 19.99, model.BandLow},
		{"at min, far from optimal", 20, model.BandSuboptimal},
		{"just inside tolerance low side", 44, model.BandOptimal},
		{"at optimal", 50, model.BandOptimal},
		{"just inside tolerance high side", 56, model.BandOptimal},
		{"just outside tolerance", 56.01, model.BandSuboptimal},
		{"at max", 80, model.BandSuboptimal},
		{"just above max", 80.01, model.BandHigh},
		{"well above max", 200, model.BandHigh},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.classify(tc.value, th); got != tc.want {
				t.Errorf("classify(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestEvaluate_MissingParameter(t *testing.T) {
	e := mustEvaluator(t)

	reading := optimalReading()
	delete(reading.Values, model.ParamNitrogen)

	_, err := e.Evaluate(reading)
	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("Evaluate() = %v, want MissingParameterError", err)
	}
	if missing.Parameter != model.ParamNitrogen {
		t.Errorf("Parameter = %q, want %q", missing.Parameter, model.ParamNitrogen)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := mustEvaluator(t)

	reading := optimalReading()
	reading.Values[model.ParamPH] = 5.1
	reading.Values[model.ParamTemperature] = 36

	first, err := e.Evaluate(reading)
	if err != nil {
		t.Fatalf("first Evaluate() = %v", err)
	}
	second, err := e.Evaluate(reading)
	if err != nil {
		t.Fatalf("second Evaluate() = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestEvaluate_RecommendationOrder(t *testing.T) {
	e := mustEvaluator(t)

	// Every parameter below its min: one recommendation each, in canonical order.
	reading := optimalReading()
	for param, th := range DefaultProfile().Thresholds {
		reading.Values[param] = th.Min - 1
	}

	analysis, err := e.Evaluate(reading)
	if err != nil {
		t.Fatalf("Evaluate() = %v", err)
	}
	if len(analysis.Recommendations) != len(model.SoilParameters) {
		t.Fatalf("got %d recommendations, want %d", len(analysis.Recommendations), len(model.SoilParameters))
	}
	for i, rec := range analysis.Recommendations {
		if rec.Parameter != model.SoilParameters[i] {
			t.Errorf("recommendation[%d] = %q, want %q", i, rec.Parameter, model.SoilParameters[i])
		}
	}
}

func TestEvaluate_ExtraProfileParameter(t *testing.T) {
	p := DefaultProfile()
	p.Thresholds["salinity"] = Threshold{Min: 0, Max: 4, Optimal: 1}
	p.Actions["salinity"] = Actions{
		model.BandLow:        "No action needed",
		model.BandHigh:       "Leach salts with fresh water",
		model.BandSuboptimal: "Monitor salinity",
	}
	e, err := NewEvaluator(p)
	if err != nil {
		t.Fatalf("NewEvaluator() = %v", err)
	}

	// Reading without the regional parameter is rejected.
	_, err = e.Evaluate(optimalReading())
	var missing *MissingParameterError
	if !errors.As(err, &missing) || missing.Parameter != "salinity" {
		t.Fatalf("Evaluate() = %v, want MissingParameterError for salinity", err)
	}

	reading := optimalReading()
	reading.Values["salinity"] = 5
	analysis, err := e.Evaluate(reading)
	if err != nil {
		t.Fatalf("Evaluate() = %v", err)
	}
	if got := analysis.Conditions["salinity"]; got != model.BandHigh {
		t.Errorf("salinity band = %q, want %q", got, model.BandHigh)
	}
	// Extra parameters sort after the canonical six.
	last := analysis.Recommendations[len(analysis.Recommendations)-1]
	if last.Parameter != "salinity" {
		t.Errorf("last recommendation = %q, want salinity", last.Parameter)
	}
}

func TestNewEvaluator_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"missing threshold", func(p *Profile) { delete(p.Thresholds, model.ParamPH) }},
		{"min not below max", func(p *Profile) { p.Thresholds[model.ParamPH] = Threshold{Min: 7, Max: 7, Optimal: 7} }},
		{"optimal outside range", func(p *Profile) { p.Thresholds[model.ParamPH] = Threshold{Min: 5.5, Max: 7.5, Optimal: 9} }},
		{"missing action table", func(p *Profile) { delete(p.Actions, model.ParamPotassium) }},
		{"missing one action", func(p *Profile) { delete(p.Actions[model.ParamMoisture], model.BandHigh) }},
		{"empty action text", func(p *Profile) { p.Actions[model.ParamMoisture][model.BandLow] = "" }},
		{"negative tolerance", func(p *Profile) { p.Tolerance = -0.1 }},
		{"tolerance above one", func(p *Profile) { p.Tolerance = 1.5 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultProfile()
			tc.mutate(&p)
			if _, err := NewEvaluator(p); !errors.Is(err, ErrIncompleteProfile) {
				t.Errorf("NewEvaluator() = %v, want ErrIncompleteProfile", err)
			}
		})
	}
}
