package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haskel/pitwall/internal/config"
	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/metrics"
	"github.com/haskel/pitwall/internal/model"
	"github.com/haskel/pitwall/internal/predictor"
	"github.com/haskel/pitwall/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testEngine trains a linear tyre-age model for VIR on laps losing 0.1s
// per lap of tyre age.
func testEngine(t *testing.T, cfg *config.Config, rec metrics.Recorder) *engine.Engine {
	t.Helper()

	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("NUMBER,LAP_NUMBER,Laps_on_this_Tireset,LAP_DELTA,S1_DELTA,S2_DELTA,S3_DELTA,TRACK_TEMP,avg_aggressiveness\n")
	for age := 1; age <= 12; age++ {
		d := 0.1 * float64(age)
		fmt.Fprintf(&b, "7,%d,%d,%g,%g,%g,%g,%d,1.0\n", age+1, age, d, d/3, d/3, d/3, 30+age%4)
	}
	if err := os.MkdirAll(filepath.Join(dir, "VIR"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "VIR", "R1_processed.csv"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}

	eng := engine.New(storage.New(dir, testLogger()), cfg.Simulation, rec, testLogger())
	if _, err := eng.Train("VIR", []string{predictor.FeatureTireAge}, model.Config{Type: model.ModelTypeLinear}); err != nil {
		t.Fatal(err)
	}
	return eng
}

func testServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()

	cfg := config.Default()
	for _, m := range mutate {
		m(cfg)
	}

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPromRecorder(reg)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, testEngine(t, cfg, rec), nil, rec, reg, testLogger(), "0.1.0-test")
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHandleInfoAndHealth(t *testing.T) {
	s := testServer(t)

	info := decodeBody[InfoResponse](t, do(t, s, http.MethodGet, "/", ""))
	if info.Name != "pitwall" || info.Version != "0.1.0-test" {
		t.Errorf("unexpected info %+v", info)
	}

	health := decodeBody[HealthResponse](t, do(t, s, http.MethodGet, "/health", ""))
	if health.Status != "ok" {
		t.Errorf("unexpected health %+v", health)
	}

	if w := do(t, s, http.MethodGet, "/unknown", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", w.Code)
	}
}

func TestHandlePredict(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodPost, "/v1/circuits/VIR/predict", `{"tire_age_laps": 4, "track_temp_c": 35, "aggressiveness": 1.1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}

	resp := decodeBody[engine.PredictResponse](t, w)
	if resp.Circuit != "VIR" || resp.NextLapTireAge != 5 {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.IgnoredInputs) != 2 {
		t.Errorf("expected temperature and aggressiveness reported as ignored, got %v", resp.IgnoredInputs)
	}
}

func TestHandleCautionAndBattle(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodPost, "/v1/circuits/VIR/caution", `{"tire_age_laps": 10, "laps_remaining": 5, "target_pit_lap": 3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("caution status %d: %s", w.Code, w.Body.String())
	}
	caution := decodeBody[engine.CautionResponse](t, w)
	if !caution.Verdict.PitNow || caution.Costs.Green != 25 || caution.Costs.Yellow != 20 {
		t.Errorf("unexpected caution response %+v", caution)
	}

	w = do(t, s, http.MethodPost, "/v1/circuits/VIR/battle", `{"mode": "undercut", "own_tire_age_laps": 10, "rival_tire_age_laps": 10, "gap_seconds": 0.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("battle status %d: %s", w.Code, w.Body.String())
	}
	battle := decodeBody[engine.BattleResponse](t, w)
	if !battle.Verdict.Success || !strings.HasPrefix(battle.Summary, "undercut succeeds") {
		t.Errorf("unexpected battle response %+v", battle)
	}
}

func TestHandleErrors(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"invalid params", http.MethodPost, "/v1/circuits/VIR/predict", `{"tire_age_laps": 0}`, http.StatusBadRequest, "invalid_params"},
		{"empty body", http.MethodPost, "/v1/circuits/VIR/caution", "", http.StatusBadRequest, "invalid_params"},
		{"malformed json", http.MethodPost, "/v1/circuits/VIR/predict", `{"tire_age_laps":`, http.StatusBadRequest, "invalid_body"},
		{"unknown field", http.MethodPost, "/v1/circuits/VIR/predict", `{"tyre_age": 3}`, http.StatusBadRequest, "invalid_body"},
		{"bad circuit name", http.MethodGet, "/v1/circuits/..VIR", "", http.StatusBadRequest, "invalid_circuit"},
		{"unknown circuit", http.MethodPost, "/v1/circuits/Monaco/predict", `{"tire_age_laps": 3}`, http.StatusNotFound, "unknown_circuit"},
		{"model missing", http.MethodPost, "/v1/circuits/Sebring/predict", `{"tire_age_laps": 3}`, http.StatusServiceUnavailable, "model_unavailable"},
		{"dataset missing", http.MethodGet, "/v1/circuits/Sebring/analysis", "", http.StatusServiceUnavailable, "dataset_unavailable"},
		{"too many laps", http.MethodPost, "/v1/circuits/VIR/caution", `{"tire_age_laps": 3, "laps_remaining": 99}`, http.StatusBadRequest, "invalid_params"},
		{"body too large", http.MethodPost, "/v1/circuits/VIR/predict", `{"tire_age_laps": 3, "track_temp_c": ` + strings.Repeat("1", 70<<10) + `}`, http.StatusRequestEntityTooLarge, "body_too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, w)
			if resp.Code != tt.code || resp.Error == "" || resp.RequestID == "" {
				t.Errorf("unexpected error response %+v", resp)
			}
		})
	}
}

func TestHandleCircuits(t *testing.T) {
	s := testServer(t)

	list := decodeBody[CircuitsResponse](t, do(t, s, http.MethodGet, "/v1/circuits", ""))
	found := false
	for _, c := range list.Circuits {
		if c.Circuit == "VIR" {
			found = c.Model.Exists && c.HasDataset
		}
	}
	if !found {
		t.Errorf("VIR with model and dataset missing from %+v", list.Circuits)
	}

	detail := decodeBody[engine.CircuitDetail](t, do(t, s, http.MethodGet, "/v1/circuits/VIR", ""))
	if !detail.Available || detail.ModelType != model.ModelTypeLinear || detail.Ranges == nil {
		t.Errorf("unexpected detail %+v", detail)
	}

	barber := decodeBody[engine.CircuitDetail](t, do(t, s, http.MethodGet, "/v1/circuits/Barber", ""))
	if barber.Available || barber.Error == "" {
		t.Errorf("Barber should be unavailable: %+v", barber)
	}
}

func TestHandleAnalysis(t *testing.T) {
	s := testServer(t)

	w := do(t, s, http.MethodGet, "/v1/circuits/VIR/analysis?car=7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	a := decodeBody[engine.Analysis](t, w)
	if a.Car != "7" || len(a.Degradation) != 12 || len(a.SectorTrends) != 3 {
		t.Errorf("unexpected analysis %+v", a)
	}

	if w := do(t, s, http.MethodGet, "/v1/circuits/VIR/analysis?car=99", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown car, got %d", w.Code)
	}
}

func TestHandleReloadAndStatus(t *testing.T) {
	s := testServer(t)

	do(t, s, http.MethodPost, "/v1/circuits/VIR/predict", `{"tire_age_laps": 2}`)
	status := decodeBody[StatusResponse](t, do(t, s, http.MethodGet, "/status", ""))
	if len(status.CachedCircuits) != 1 || status.CachedCircuits[0] != "VIR" {
		t.Errorf("expected VIR cached, got %v", status.CachedCircuits)
	}
	if status.Resources != nil {
		t.Error("expected no resources without an aggregator")
	}

	w := do(t, s, http.MethodPost, "/v1/circuits/VIR/reload", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeBody[engine.ReloadResponse](t, w); !resp.Available {
		t.Errorf("VIR should reload: %+v", resp)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", storage.ErrInvalidCircuit), http.StatusBadRequest},
		{&predictor.LoadError{Circuit: "VIR", Err: os.ErrNotExist}, http.StatusServiceUnavailable},
		{engine.ErrUnknownCircuit, http.StatusNotFound},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
