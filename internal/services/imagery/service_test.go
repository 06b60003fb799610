package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldscout/fieldscout/internal/analysis/vegetation"
	"github.com/fieldscout/fieldscout/internal/drone"
	"github.com/fieldscout/fieldscout/internal/model"
)

type capturePublisher struct {
	published [][]byte
}

func (p *capturePublisher) Publish(payload []byte) error {
	p.published = append(p.published, payload)
	return nil
}

func (p *capturePublisher) Close() {}

func mustService(t *testing.T, ctrl *drone.Controller, cls Classifier) (*Service, *capturePublisher) {
	t.Helper()
	scorer, err := vegetation.NewScorer(vegetation.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	pub := &capturePublisher{}
	return NewService(ctrl, scorer, cls, pub, "field1", time.Hour), pub
}

func TestProcessFrame_FullCanopy(t *testing.T) {
	svc, _ := mustService(t, nil, nil)

	img := vegetation.NewImage(32, 32)
	img.Fill(0, 255, 0)

	report, err := svc.ProcessFrame(context.Background(), img)
	if err != nil {
		t.Fatalf("ProcessFrame() = %v", err)
	}
	if report.FieldID != "field1" {
		t.Errorf("FieldID = %q, want field1", report.FieldID)
	}
	if report.Metrics.CoveragePct != 100 {
		t.Errorf("CoveragePct = %v, want 100", report.Metrics.CoveragePct)
	}
	if report.Metrics.HealthScore != 100 {
		t.Errorf("HealthScore = %v, want 100", report.Metrics.HealthScore)
	}
	if report.Disease != nil {
		t.Errorf("Disease = %+v without a classifier", report.Disease)
	}
}

func TestProcessFrame_BareField(t *testing.T) {
	svc, _ := mustService(t, nil, nil)

	img := vegetation.NewImage(32, 32) // all black

	report, err := svc.ProcessFrame(context.Background(), img)
	if err != nil {
		t.Fatalf("ProcessFrame(bare) = %v", err)
	}
	if report.Metrics != (model.HealthMetrics{}) {
		t.Errorf("Metrics = %+v, want zero metrics for a bare field", report.Metrics)
	}
	if !report.NoVegetation {
		t.Error("NoVegetation = false, want the bare field marked explicitly")
	}
}

func TestProcessFrame_NoVegetationMarkerAbsentOnCanopy(t *testing.T) {
	svc, _ := mustService(t, nil, nil)

	img := vegetation.NewImage(32, 32)
	img.Fill(0, 255, 0)

	report, err := svc.ProcessFrame(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}
	if report.NoVegetation {
		t.Error("NoVegetation = true over a full canopy")
	}
}

func TestProcessFrame_ClassifierVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("classifier request: %v", err)
		}
		if req.Width != scoreWidth || req.Height != scoreHeight {
			t.Errorf("classifier got %dx%d frame, want %dx%d", req.Width, req.Height, scoreWidth, scoreHeight)
		}
		json.NewEncoder(w).Encode(classifyResponse{Label: "leaf_rust", Confidence: 0.83})
	}))
	defer srv.Close()

	svc, _ := mustService(t, nil, NewHTTPClassifier(srv.URL, time.Second))

	img := vegetation.NewImage(32, 32)
	img.Fill(0, 255, 0)

	report, err := svc.ProcessFrame(context.Background(), img)
	if err != nil {
		t.Fatalf("ProcessFrame() = %v", err)
	}
	if report.Disease == nil {
		t.Fatal("Disease = nil, want classifier verdict")
	}
	if report.Disease.Label != "leaf_rust" || report.Disease.Confidence != 0.83 {
		t.Errorf("Disease = %+v", report.Disease)
	}
}

func TestProcessFrame_ClassifierDown(t *testing.T) {
	svc, _ := mustService(t, nil, NewHTTPClassifier("http://127.0.0.1:1/classify", 100*time.Millisecond))

	img := vegetation.NewImage(32, 32)
	img.Fill(0, 255, 0)

	// A dead classifier must not sink the report.
	report, err := svc.ProcessFrame(context.Background(), img)
	if err != nil {
		t.Fatalf("ProcessFrame() = %v", err)
	}
	if report.Disease != nil {
		t.Errorf("Disease = %+v from an unreachable classifier", report.Disease)
	}
}

func TestSurvey(t *testing.T) {
	ctrl := drone.NewController(drone.SyntheticFrames(1, 7))
	ctrl.SetStepTime(20 * time.Millisecond)
	svc, pub := mustService(t, ctrl, nil)

	if err := svc.Survey(context.Background()); err != nil {
		t.Fatalf("Survey() = %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d reports, want 1", len(pub.published))
	}
	var report model.HealthReport
	if err := json.Unmarshal(pub.published[0], &report); err != nil {
		t.Fatalf("published payload is not a HealthReport: %v", err)
	}
	if report.FieldID != "field1" {
		t.Errorf("FieldID = %q, want field1", report.FieldID)
	}
	if report.Metrics.CoveragePct <= 0 {
		t.Errorf("CoveragePct = %v over a full canopy", report.Metrics.CoveragePct)
	}

	if st := ctrl.Status(); st.Mission != model.MissionLanded {
		t.Errorf("Mission = %q after survey, want landed", st.Mission)
	}
}

func TestSurvey_DrainedDrone(t *testing.T) {
	ctrl := drone.NewController(drone.SyntheticFrames(1, 7))
	ctrl.SetStepTime(0)
	svc, pub := mustService(t, ctrl, nil)

	// First survey with zero step time lands before a capture can happen,
	// or succeeds; either way repeated surveys drain the battery until the
	// drone refuses to launch.
	var err error
	for i := 0; i < 30; i++ {
		err = svc.Survey(context.Background())
		if errors.Is(err, drone.ErrLowBattery) {
			break
		}
	}
	if !errors.Is(err, drone.ErrLowBattery) {
		t.Fatalf("Survey(drained) = %v, want ErrLowBattery", err)
	}
	_ = pub
}

func TestSwapConfig(t *testing.T) {
	svc, _ := mustService(t, nil, nil)

	bad := vegetation.DefaultConfig()
	bad.CoverageWeight = 0.9 // weights no longer sum to 1
	if err := svc.SwapConfig(bad); err == nil {
		t.Error("SwapConfig(bad) = nil, want error")
	}

	good := vegetation.DefaultConfig()
	good.SatMin = 10
	if err := svc.SwapConfig(good); err != nil {
		t.Errorf("SwapConfig(good) = %v", err)
	}
}
