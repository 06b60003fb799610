package sensor_simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fieldscout/fieldscout/internal/analysis/soil"
	"github.com/fieldscout/fieldscout/internal/model"
)

const (
	// defaultStep: max walk step per tick, as a fraction of the parameter range.
	defaultStep = 0.03

	// overshoot: how far beyond [min,max] the walk may drift, as a fraction
	// of the range. Keeps out-of-range (low/high) readings reachable.
	overshoot = 0.15

	// soilGridsURL: single fetch at startup; never called per tick.
	soilGridsURL = "https://rest.isric.org/soilgrids/v2.0/properties/query?lat=%f&lon=%f&property=wv0010"
)

// DataGenerator evolves one simulated value per soil parameter as a bounded
// random walk around the profile's operating ranges.
type DataGenerator struct {
	mu         sync.Mutex
	seeded     bool
	values     map[string]float64
	thresholds map[string]soil.Threshold
	params     []string // stable iteration order keeps the walk reproducible per seed
	step       float64
	rng        *rand.Rand
	httpClient *http.Client
}

// NewDataGenerator builds a generator over the profile's threshold table.
// A non-positive step falls back to the default walk width.
func NewDataGenerator(p soil.Profile, step float64, seed int64) *DataGenerator {
	if step <= 0 {
		step = defaultStep
	}
	params := make([]string, 0, len(p.Thresholds))
	for param := range p.Thresholds {
		params = append(params, param)
	}
	sort.Strings(params)
	return &DataGenerator{
		values:     make(map[string]float64, len(p.Thresholds)),
		thresholds: p.Thresholds,
		params:     params,
		step:       step,
		rng:        rand.New(rand.NewSource(seed)),
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// SeedFromSoilGrids performs a single fetch against the SoilGrids API and
// seeds the initial moisture level from the local topsoil water content.
// On any failure the walk starts from the profile optimum instead.
func (g *DataGenerator) SeedFromSoilGrids(ctx context.Context, lat, lon float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seeded {
		return
	}
	g.seedLocked()

	if lat == 0 && lon == 0 {
		return
	}
	if wv, err := g.fetchTopsoilMoisture(ctx, lat, lon); err == nil {
		th := g.thresholds[model.ParamMoisture]
		g.values[model.ParamMoisture] = clamp(wv*100, walkFloor(th), walkCeil(th))
	}
}

// Next advances the walk one tick and emits a reading.
func (g *DataGenerator) Next(fieldID, sensorID string) model.SoilReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.seeded {
		g.seedLocked()
	}

	values := make(map[string]float64, len(g.values))
	for _, param := range g.params {
		th := g.thresholds[param]
		span := th.Max - th.Min
		v := g.values[param] + (g.rng.Float64()*2-1)*g.step*span
		v = clamp(v, walkFloor(th), walkCeil(th))
		g.values[param] = v
		values[param] = math.Round(v*100) / 100
	}

	return model.SoilReading{
		FieldID:   fieldID,
		SensorID:  sensorID,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05"),
		Values:    values,
	}
}

// seedLocked starts every parameter at its optimum. Caller holds mu.
func (g *DataGenerator) seedLocked() {
	for param, th := range g.thresholds {
		g.values[param] = th.Optimal
	}
	g.seeded = true
}

// soilGridsResponse covers the slice of the SoilGrids payload we read:
// first layer, first depth, median value.
type soilGridsResponse struct {
	Properties struct {
		Layers []struct {
			Depths []struct {
				Values map[string]float64 `json:"values"`
			} `json:"depths"`
		} `json:"layers"`
	} `json:"properties"`
}

func (g *DataGenerator) fetchTopsoilMoisture(ctx context.Context, lat, lon float64) (float64, error) {
	url := fmt.Sprintf(soilGridsURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "fieldscout-sensor-simulator/1.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("soilgrids HTTP %d", resp.StatusCode)
	}

	var parsed soilGridsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return 0, err
	}
	if len(parsed.Properties.Layers) == 0 || len(parsed.Properties.Layers[0].Depths) == 0 {
		return 0, fmt.Errorf("soilgrids: no layer data")
	}

	vals := parsed.Properties.Layers[0].Depths[0].Values
	for _, k := range []string{"Q0.5", "mean"} {
		if wv, ok := vals[k]; ok {
			return normalizeWV(wv), nil
		}
	}
	return 0, fmt.Errorf("soilgrids: moisture value not found")
}

// normalizeWV maps SoilGrids wv**** values into [0,1]. Most layers are
// integers in thousandths of m3/m3 (e.g. 420 => 0.420).
func normalizeWV(x float64) float64 {
	if x > 1.5 {
		x = x / 1000.0
	}
	return clamp(x, 0, 1)
}

func walkFloor(t soil.Threshold) float64 { return t.Min - overshoot*(t.Max-t.Min) }
func walkCeil(t soil.Threshold) float64  { return t.Max + overshoot*(t.Max-t.Min) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
