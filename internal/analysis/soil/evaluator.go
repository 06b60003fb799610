// Package soil classifies soil sensor readings against per-parameter
// threshold profiles and derives corrective recommendations.
//
// The evaluator is a pure function of its inputs plus an immutable profile:
// no internal state, safe for concurrent use, a fresh SoilAnalysis per call.
package soil

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fieldscout/fieldscout/internal/model"
)

// DefaultTolerance is the width of the optimal band as a fraction of the
// parameter range (max-min), applied when the profile leaves it unset.
const DefaultTolerance = 0.1

// ErrIncompleteProfile marks a threshold or action table that cannot serve
// every monitored parameter. It is fatal at startup: an evaluator is never
// constructed over a partial table.
var ErrIncompleteProfile = errors.New("soil: incomplete profile")

// MissingParameterError reports a reading that lacks a parameter the
// profile expects.
type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("soil: reading is missing parameter %q", e.Parameter)
}

// Threshold bounds the expected range of one parameter. Values outside
// [Min,Max] are still classified (as low/high), the bounds are not a
// validity check.
type Threshold struct {
	Min     float64 `yaml:"min" json:"min"`
	Max     float64 `yaml:"max" json:"max"`
	Optimal float64 `yaml:"optimal" json:"optimal"`
}

// Actions maps the three non-optimal bands to corrective action text.
type Actions map[model.ConditionBand]string

// Profile is the static configuration the evaluator runs against: one
// threshold and one action set per parameter. Profiles are regional data
// loaded from config, never mutated after construction.
type Profile struct {
	Tolerance  float64              `yaml:"optimal_tolerance" json:"optimal_tolerance"`
	Thresholds map[string]Threshold `yaml:"thresholds" json:"thresholds"`
	Actions    map[string]Actions   `yaml:"actions" json:"actions"`
}

// Evaluator classifies readings against a validated profile.
type Evaluator struct {
	tolerance  float64
	thresholds map[string]Threshold
	actions    map[string]Actions
	params     []string // evaluation order: canonical first, extras sorted
}

// NewEvaluator validates the profile and builds an evaluator. Validation
// failures wrap ErrIncompleteProfile; callers treat them as fatal.
func NewEvaluator(p Profile) (*Evaluator, error) {
	tol := p.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	if tol < 0 || tol >= 1 {
		return nil, fmt.Errorf("%w: optimal_tolerance %v out of (0,1)", ErrIncompleteProfile, p.Tolerance)
	}

	for _, param := range model.SoilParameters {
		if _, ok := p.Thresholds[param]; !ok {
			return nil, fmt.Errorf("%w: no threshold for %q", ErrIncompleteProfile, param)
		}
	}

	params := make([]string, 0, len(p.Thresholds))
	params = append(params, model.SoilParameters...)
	var extras []string
	for name := range p.Thresholds {
		if !isCanonical(name) {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	params = append(params, extras...)

	for _, param := range params {
		t := p.Thresholds[param]
		if !(t.Min < t.Max) {
			return nil, fmt.Errorf("%w: %s min %v must be below max %v", ErrIncompleteProfile, param, t.Min, t.Max)
		}
		if t.Optimal < t.Min || t.Optimal > t.Max {
			return nil, fmt.Errorf("%w: %s optimal %v outside [%v,%v]", ErrIncompleteProfile, param, t.Optimal, t.Min, t.Max)
		}
		acts := p.Actions[param]
		for _, band := range []model.ConditionBand{model.BandLow, model.BandHigh, model.BandSuboptimal} {
			if acts[band] == "" {
				return nil, fmt.Errorf("%w: no %s action for %q", ErrIncompleteProfile, band, param)
			}
		}
	}

	return &Evaluator{
		tolerance:  tol,
		thresholds: p.Thresholds,
		actions:    p.Actions,
		params:     params,
	}, nil
}

// Evaluate classifies every parameter of the reading and emits one
// recommendation per non-optimal band. The reading must carry a value for
// every parameter the profile knows; otherwise a MissingParameterError is
// returned and no partial analysis is produced.
func (e *Evaluator) Evaluate(reading model.SoilReading) (*model.SoilAnalysis, error) {
	analysis := &model.SoilAnalysis{
		FieldID:         reading.FieldID,
		SensorID:        reading.SensorID,
		Timestamp:       reading.Timestamp,
		Conditions:      make(map[string]model.ConditionBand, len(e.params)),
		Recommendations: []model.Recommendation{},
	}

	for _, param := range e.params {
		value, ok := reading.Values[param]
		if !ok {
			return nil, &MissingParameterError{Parameter: param}
		}

		band := e.classify(value, e.thresholds[param])
		analysis.Conditions[param] = band
		if band == model.BandOptimal {
			continue
		}
		analysis.Recommendations = append(analysis.Recommendations, model.Recommendation{
			Parameter:    param,
			CurrentValue: value,
			Condition:    band,
			Action:       e.actions[param][band],
		})
	}

	return analysis, nil
}

// classify applies the band rules in order: out-of-range first, then the
// optimal tolerance window, suboptimal otherwise. Rule order makes the four
// bands a partition of the real line.
func (e *Evaluator) classify(value float64, t Threshold) model.ConditionBand {
	switch {
	case value < t.Min:
		return model.BandLow
	case value > t.Max:
		return model.BandHigh
	case math.Abs(value-t.Optimal) <= e.tolerance*(t.Max-t.Min):
		return model.BandOptimal
	default:
		return model.BandSuboptimal
	}
}

func isCanonical(name string) bool {
	for _, p := range model.SoilParameters {
		if p == name {
			return true
		}
	}
	return false
}
