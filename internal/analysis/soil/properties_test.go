package soil

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/fieldscout/fieldscout/internal/model"
)

// genThreshold generates a well-formed threshold: min < max, optimal inside.
func genThreshold() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(-100, 100),
		gen.Float64Range(0.1, 200),
		gen.Float64Range(0, 1),
	).Map(func(vals []interface{}) Threshold {
		min := vals[0].(float64)
		max := min + vals[1].(float64)
		opt := min + vals[2].(float64)*(max-min)
		return Threshold{Min: min, Max: max, Optimal: opt}
	})
}

// TestClassify_PartitionProperty checks that the four bands partition the
// real line: every value lands in exactly the band the rule order dictates.
func TestClassify_PartitionProperty(t *testing.T) {
	e := mustEvaluator(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("each value lands in exactly one band", prop.ForAll(
		func(th Threshold, value float64) bool {
			band := e.classify(value, th)
			switch {
			case value < th.Min:
				return band == model.BandLow
			case value > th.Max:
				return band == model.BandHigh
			case math.Abs(value-th.Optimal) <= e.tolerance*(th.Max-th.Min):
				return band == model.BandOptimal
			default:
				return band == model.BandSuboptimal
			}
		},
		genThreshold(),
		gen.Float64Range(-500, 500),
	))

	properties.Property("in-range values are never low or high", prop.ForAll(
		func(th Threshold, frac float64) bool {
			value := th.Min + frac*(th.Max-th.Min)
			band := e.classify(value, th)
			return band == model.BandOptimal || band == model.BandSuboptimal
		},
		genThreshold(),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}
