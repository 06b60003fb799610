package vegetation

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/fieldscout/fieldscout/internal/model"
)

// ErrEmptyVegetation is returned when a frame contains no vegetation pixels:
// the mean saturation over an empty mask is undefined, so scoring refuses to
// produce a number instead of propagating NaN.
var ErrEmptyVegetation = errors.New("vegetation: no vegetation pixels in frame")

// ErrBadConfig marks a scorer configuration that cannot be served. Fatal at
// startup, like an incomplete soil profile.
var ErrBadConfig = errors.New("vegetation: invalid scorer config")

// Config holds the detection thresholds and score weights. Hue bounds are on
// the 0-179 half-degree scale; saturation/value minimums on 0-255.
type Config struct {
	HueMin float64 `yaml:"hue_min" json:"hue_min"`
	HueMax float64 `yaml:"hue_max" json:"hue_max"`
	SatMin float64 `yaml:"sat_min" json:"sat_min"`
	ValMin float64 `yaml:"val_min" json:"val_min"`

	// CoverageWeight and SaturationWeight combine the two factors into the
	// health score; they must sum to 1.
	CoverageWeight   float64 `yaml:"coverage_weight" json:"coverage_weight"`
	SaturationWeight float64 `yaml:"saturation_weight" json:"saturation_weight"`
}

// DefaultConfig returns the mid-green detection band and the 0.6/0.4 score
// weighting of the reference deployment.
func DefaultConfig() Config {
	return Config{
		HueMin:           35,
		HueMax:           85,
		SatMin:           30,
		ValMin:           30,
		CoverageWeight:   0.6,
		SaturationWeight: 0.4,
	}
}

// Scorer derives a vegetation mask and a health score from aerial frames.
type Scorer struct {
	cfg Config
}

// NewScorer validates the config and builds a scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	if cfg.HueMin < 0 || cfg.HueMax > 179 || cfg.HueMin > cfg.HueMax {
		return nil, fmt.Errorf("%w: hue band [%v,%v] outside [0,179]", ErrBadConfig, cfg.HueMin, cfg.HueMax)
	}
	if cfg.SatMin < 0 || cfg.SatMin > 255 || cfg.ValMin < 0 || cfg.ValMin > 255 {
		return nil, fmt.Errorf("%w: sat/val minimums %v/%v outside [0,255]", ErrBadConfig, cfg.SatMin, cfg.ValMin)
	}
	if cfg.CoverageWeight < 0 || cfg.SaturationWeight < 0 {
		return nil, fmt.Errorf("%w: negative score weight", ErrBadConfig)
	}
	if math.Abs(cfg.CoverageWeight+cfg.SaturationWeight-1) > 1e-9 {
		return nil, fmt.Errorf("%w: score weights %v+%v must sum to 1", ErrBadConfig, cfg.CoverageWeight, cfg.SaturationWeight)
	}
	return &Scorer{cfg: cfg}, nil
}

// Detect classifies each pixel of the frame: vegetation when the hue falls
// in the configured green band and both saturation and value clear their
// minimums, excluding near-black and near-gray pixels.
func (s *Scorer) Detect(img *Image) (*Mask, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	mask := &Mask{
		Width:  img.Width,
		Height: img.Height,
		Bits:   make([]bool, img.Width*img.Height),
	}
	for i, j := 0, 0; i < len(img.Pix); i, j = i+Channels, j+1 {
		h, sat, v := rgbToHSV(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		mask.Bits[j] = h >= s.cfg.HueMin && h <= s.cfg.HueMax &&
			sat >= s.cfg.SatMin && v >= s.cfg.ValMin
	}
	return mask, nil
}

// Score reduces a frame to coverage, mean saturation over vegetation pixels
// and the weighted health score (0-100). A frame with zero vegetation pixels
// returns ErrEmptyVegetation and a zero-value result, never NaN.
func (s *Scorer) Score(img *Image) (model.HealthMetrics, error) {
	mask, err := s.Detect(img)
	if err != nil {
		return model.HealthMetrics{}, err
	}

	saturations := make([]float64, 0, mask.Count())
	for i, j := 0, 0; i < len(img.Pix); i, j = i+Channels, j+1 {
		if !mask.Bits[j] {
			continue
		}
		_, sat, _ := rgbToHSV(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		saturations = append(saturations, sat)
	}
	if len(saturations) == 0 {
		return model.HealthMetrics{}, ErrEmptyVegetation
	}

	avgSat, err := stats.Mean(saturations)
	if err != nil {
		return model.HealthMetrics{}, fmt.Errorf("vegetation: saturation mean: %w", err)
	}

	coverage := 100 * float64(len(saturations)) / float64(len(mask.Bits))
	score := 100 * (s.cfg.CoverageWeight*coverage/100 + s.cfg.SaturationWeight*avgSat/255)

	return model.HealthMetrics{
		CoveragePct:   coverage,
		AvgSaturation: avgSat,
		HealthScore:   score,
	}, nil
}
