package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromRecorder_RecordSimulation(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPromRecorder(reg)
	if err != nil {
		t.Fatalf("create recorder: %v", err)
	}

	r.RecordSimulation("VIR", "caution", "pit_now", 50*time.Microsecond)
	r.RecordSimulation("VIR", "caution", "pit_now", 70*time.Microsecond)

	expected := `
# HELP pitwall_simulations_total Total number of strategy simulations by verdict
# TYPE pitwall_simulations_total counter
pitwall_simulations_total{circuit="VIR",kind="caution",verdict="pit_now"} 2
`
	if err := testutil.CollectAndCompare(r.simulations, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(r.simDuration); c != 1 {
		t.Errorf("expected one duration series, got %d", c)
	}
}

func TestPromRecorder_Counters(t *testing.T) {
	r, err := NewPromRecorder(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}

	r.RecordPrediction("COTA")
	r.RecordLoadFailure("Barber")
	r.RecordRequest(http.MethodPost, http.StatusOK, time.Millisecond)
	r.SetCachedModels(3)

	if v := testutil.ToFloat64(r.predictions.WithLabelValues("COTA")); v != 1 {
		t.Errorf("expected 1 prediction, got %v", v)
	}
	if v := testutil.ToFloat64(r.loadFailures.WithLabelValues("Barber")); v != 1 {
		t.Errorf("expected 1 load failure, got %v", v)
	}
	if v := testutil.ToFloat64(r.requests.WithLabelValues("POST", "200")); v != 1 {
		t.Errorf("expected 1 request, got %v", v)
	}
	if v := testutil.ToFloat64(r.cached); v != 3 {
		t.Errorf("expected 3 cached models, got %v", v)
	}
}

func TestNewPromRecorder_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromRecorder(reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPromRecorder(reg)
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}

	a.RecordPrediction("VIR")
	b.RecordPrediction("VIR")
	if v := testutil.ToFloat64(b.predictions.WithLabelValues("VIR")); v != 2 {
		t.Errorf("expected shared counter at 2, got %v", v)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, _ := NewPromRecorder(reg)
	r.RecordPrediction("VIR")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `pitwall_predictions_total{circuit="VIR"} 1`) {
		t.Errorf("metrics output missing prediction counter:\n%s", rec.Body.String())
	}
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.RecordPrediction("VIR")
	r.RecordSimulation("VIR", "battle", "success", time.Second)
	r.SetCachedModels(1)
}
