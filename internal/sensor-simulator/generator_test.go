package sensor_simulator

import (
	"testing"

	"github.com/fieldscout/fieldscout/internal/analysis/soil"
	"github.com/fieldscout/fieldscout/internal/model"
)

func TestNext_CarriesAllParameters(t *testing.T) {
	g := NewDataGenerator(soil.DefaultProfile(), 0, 1)

	reading := g.Next("field1", "sensor1")
	if reading.FieldID != "field1" || reading.SensorID != "sensor1" {
		t.Errorf("identity = %s/%s", reading.FieldID, reading.SensorID)
	}
	if reading.Timestamp == "" {
		t.Error("empty timestamp")
	}
	for _, param := range model.SoilParameters {
		if _, ok := reading.Values[param]; !ok {
			t.Errorf("reading misses %s", param)
		}
	}
}

func TestNext_StaysWithinWalkBounds(t *testing.T) {
	profile := soil.DefaultProfile()
	g := NewDataGenerator(profile, 0.5, 42) // aggressive step to probe the clamp

	for i := 0; i < 500; i++ {
		reading := g.Next("f", "s")
		for param, v := range reading.Values {
			th := profile.Thresholds[param]
			span := th.Max - th.Min
			if v < th.Min-overshoot*span-1e-9 || v > th.Max+overshoot*span+1e-9 {
				t.Fatalf("tick %d: %s = %v escaped walk bounds [%v,%v]",
					i, param, v, th.Min-overshoot*span, th.Max+overshoot*span)
			}
		}
	}
}

func TestNext_StartsAtOptimum(t *testing.T) {
	profile := soil.DefaultProfile()
	g := NewDataGenerator(profile, 0.001, 7) // tiny step: first tick stays near optimal

	reading := g.Next("f", "s")
	for param, v := range reading.Values {
		opt := profile.Thresholds[param].Optimal
		span := profile.Thresholds[param].Max - profile.Thresholds[param].Min
		if v < opt-span*0.01 || v > opt+span*0.01 {
			t.Errorf("%s starts at %v, want near optimum %v", param, v, opt)
		}
	}
}

func TestNext_DeterministicPerSeed(t *testing.T) {
	a := NewDataGenerator(soil.DefaultProfile(), 0.1, 99)
	b := NewDataGenerator(soil.DefaultProfile(), 0.1, 99)

	for i := 0; i < 10; i++ {
		ra := a.Next("f", "s")
		rb := b.Next("f", "s")
		for param := range ra.Values {
			if ra.Values[param] != rb.Values[param] {
				t.Fatalf("tick %d: seeds diverge on %s: %v vs %v", i, param, ra.Values[param], rb.Values[param])
			}
		}
	}
}

func TestNormalizeWV(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{420, 0.420},  // thousandths encoding
		{0.35, 0.35},  // already a fraction
		{-3, 0},       // clamped
		{2000, 1},     // clamped after rescale
	}
	for _, tc := range tests {
		if got := normalizeWV(tc.in); got != tc.want {
			t.Errorf("normalizeWV(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
