// Package config loads regional analysis profiles: soil threshold and
// action tables plus vegetation detection settings, one YAML file per
// deployment region. An incomplete profile never reaches the analysis
// engines; Load fails and the service aborts startup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fieldscout/fieldscout/internal/analysis/soil"
	"github.com/fieldscout/fieldscout/internal/analysis/vegetation"
)

// Profile bundles the configuration tables for both analysis components.
type Profile struct {
	Soil       soil.Profile      `yaml:"soil"`
	Vegetation vegetation.Config `yaml:"vegetation"`
}

// Default returns the built-in profile used when no regional file is given.
func Default() Profile {
	return Profile{
		Soil:       soil.DefaultProfile(),
		Vegetation: vegetation.DefaultConfig(),
	}
}

// Load reads a regional profile, overlaying the built-in defaults, and
// validates the result. Partial files are allowed as long as every table
// they touch stays complete.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &p, nil
}

// Validate runs both analysis constructors against the profile. The
// constructors own the completeness rules; Validate just surfaces them
// at load time.
func (p *Profile) Validate() error {
	if _, err := soil.NewEvaluator(p.Soil); err != nil {
		return err
	}
	if _, err := vegetation.NewScorer(p.Vegetation); err != nil {
		return err
	}
	return nil
}
