package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

type queryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseQuery(r *http.Request, defMin, defLim, defTOms int) queryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return queryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

// HistoryPoint is one sample of a stored series.
type HistoryPoint struct {
	FieldID  string  `json:"field_id,omitempty"`
	SensorID string  `json:"sensor_id,omitempty"`
	Value    float64 `json:"value"`
	Time     string  `json:"time"`
}

func buildFlux(bucket, measurement, field string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r._field == %q)
  |> keep(columns: ["_time","_value","field_id","sensor_id"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, measurement, field, limit)
}

func runHistory(w http.ResponseWriter, r *http.Request, influx influxdb2.Client, org, bucket, measurement, field string) {
	p := parseQuery(r, 1440, 50, 2000)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
	defer cancel()

	api := influx.QueryAPI(org)
	res, err := api.Query(ctx, buildFlux(bucket, measurement, field, p.Minutes, p.Limit))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Error", "influx-query-error")
		_, _ = w.Write([]byte("[]"))
		return
	}
	defer func() { _ = res.Close() }()

	out := make([]HistoryPoint, 0, p.Limit)
	for res.Next() {
		rec := res.Record()

		var value float64
		switch v := rec.Value().(type) {
		case float64:
			value = v
		case int64:
			value = float64(v)
		case int:
			value = float64(v)
		}

		hp := HistoryPoint{Value: value, Time: rec.Time().UTC().Format(time.RFC3339)}
		if v, ok := rec.ValueByKey("field_id").(string); ok {
			hp.FieldID = v
		}
		if v, ok := rec.ValueByKey("sensor_id").(string); ok {
			hp.SensorID = v
		}
		out = append(out, hp)
	}
	if res.Err() != nil {
		w.Header().Set("X-Error", "influx-iter-error")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// NewHTTPMux exposes the stored data. Latest endpoints serve the full
// structs from the in-memory cache; history endpoints query Influx.
func NewHTTPMux(svc *Service, influx influxdb2.Client, org, bucket string) *http.ServeMux {
	mux := http.NewServeMux()

	// GET /data/soil/latest
	mux.HandleFunc("/data/soil/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(svc.LatestSoil())
	})

	// GET /data/vegetation/latest
	mux.HandleFunc("/data/vegetation/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(svc.LatestVegetation())
	})

	// GET /data/soil/history?minutes=1440&limit=50
	mux.HandleFunc("/data/soil/history", func(w http.ResponseWriter, r *http.Request) {
		runHistory(w, r, influx, org, bucket, soilMeasurement, "recommendation_count")
	})

	// GET /data/vegetation/history?minutes=1440&limit=50
	mux.HandleFunc("/data/vegetation/history", func(w http.ResponseWriter, r *http.Request) {
		runHistory(w, r, influx, org, bucket, vegMeasurement, "health_score")
	})

	return mux
}
