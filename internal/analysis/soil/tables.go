package soil

import "github.com/fieldscout/fieldscout/internal/model"

// DefaultProfile returns the built-in threshold and action tables. Regional
// profiles loaded from config replace this wholesale; the values here match
// the reference sensor deployment.
func DefaultProfile() Profile {
	return Profile{
		Tolerance: DefaultTolerance,
		Thresholds: map[string]Threshold{
			model.ParamMoisture:    {Min: 20, Max: 80, Optimal: 50},
			model.ParamPH:          {Min: 5.5, Max: 7.5, Optimal: 6.5},
			model.ParamNitrogen:    {Min: 0, Max: 100, Optimal: 60},
			model.ParamPhosphorus:  {Min: 0, Max: 100, Optimal: 45},
			model.ParamPotassium:   {Min: 0, Max: 100, Optimal: 50},
			model.ParamTemperature: {Min: 10, Max: 35, Optimal: 25},
		},
		Actions: map[string]Actions{
			model.ParamMoisture: {
				model.BandLow:        "Increase irrigation frequency",
				model.BandHigh:       "Reduce irrigation and improve drainage",
				model.BandSuboptimal: "Adjust irrigation schedule",
			},
			model.ParamPH: {
				model.BandLow:        "Apply lime to increase pH",
				model.BandHigh:       "Apply sulfur to decrease pH",
				model.BandSuboptimal: "Monitor pH levels",
			},
			model.ParamNitrogen: {
				model.BandLow:        "Apply nitrogen-rich fertilizer",
				model.BandHigh:       "Reduce nitrogen application",
				model.BandSuboptimal: "Adjust nitrogen levels gradually",
			},
			model.ParamPhosphorus: {
				model.BandLow:        "Apply phosphate fertilizer",
				model.BandHigh:       "Reduce phosphorus application",
				model.BandSuboptimal: "Monitor phosphorus levels",
			},
			model.ParamPotassium: {
				model.BandLow:        "Apply potassium-rich fertilizer",
				model.BandHigh:       "Reduce potassium application",
				model.BandSuboptimal: "Adjust potassium levels",
			},
			model.ParamTemperature: {
				model.BandLow:        "Consider soil warming techniques",
				model.BandHigh:       "Apply mulch for temperature regulation",
				model.BandSuboptimal: "Monitor soil temperature",
			},
		},
	}
}
