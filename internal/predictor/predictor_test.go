package predictor

import (
	"errors"
	"testing"
)

// recordingRegressor returns a fixed function of the row and keeps every
// row it was asked to predict.
type recordingRegressor struct {
	features []string
	rows     [][]float64
	fn       func(row []float64) float64
}

func (r *recordingRegressor) Features() []string { return r.features }

func (r *recordingRegressor) PredictRow(row []float64) float64 {
	cp := make([]float64, len(row))
	copy(cp, row)
	r.rows = append(r.rows, cp)
	if r.fn != nil {
		return r.fn(row)
	}
	sum := 0.0
	for _, v := range row {
		sum += v
	}
	return sum
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		features []string
		wantErr  error
	}{
		{"all features", []string{FeatureTireAge, FeatureTrackTemp, FeatureAggressiveness}, nil},
		{"tire age only", []string{FeatureTireAge}, nil},
		{"unknown feature", []string{FeatureTireAge, "HUMIDITY"}, ErrUnsupportedFeature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&recordingRegressor{features: tt.features})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_RejectsEmptyAndDuplicates(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil regressor")
	}
	if _, err := New(&recordingRegressor{}); err == nil {
		t.Error("expected error for model without features")
	}
	if _, err := New(&recordingRegressor{features: []string{FeatureTireAge, FeatureTireAge}}); err == nil {
		t.Error("expected error for duplicate features")
	}
}

func TestPredict_RowFollowsModelOrder(t *testing.T) {
	reg := &recordingRegressor{features: []string{FeatureAggressiveness, FeatureTireAge, FeatureTrackTemp}}
	p, err := New(reg)
	if err != nil {
		t.Fatal(err)
	}

	p.Predict(7, 31.5, 1.2)

	if len(reg.rows) != 1 {
		t.Fatalf("expected one prediction, got %d", len(reg.rows))
	}
	row := reg.rows[0]
	want := []float64{1.2, 7, 31.5}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestPredict_ModelWithoutTemperatureOmitsIt(t *testing.T) {
	reg := &recordingRegressor{features: []string{FeatureTireAge, FeatureAggressiveness}}
	p, err := New(reg)
	if err != nil {
		t.Fatal(err)
	}

	in := p.Input(Conditions{TireAgeLaps: 5, TrackTempC: 42, DriverAggressiveness: 0.9})
	if in.Has(FeatureTrackTemp) {
		t.Error("temperature must not be part of the request")
	}
	if len(in.Values) != 2 {
		t.Errorf("expected 2 values, got %d", len(in.Values))
	}

	p.Predict(5, 42, 0.9)
	for _, v := range reg.rows[0] {
		if v == 42 {
			t.Error("temperature value leaked into the row")
		}
	}

	ignored := p.Ignored()
	if len(ignored) != 1 || ignored[0] != FeatureTrackTemp {
		t.Errorf("expected TRACK_TEMP to be reported as ignored, got %v", ignored)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	reg := &recordingRegressor{
		features: []string{FeatureTireAge, FeatureTrackTemp, FeatureAggressiveness},
		fn: func(row []float64) float64 {
			return 0.05*row[0] + 0.01*row[1] - 0.2*row[2]
		},
	}
	p, _ := New(reg)

	a := p.Predict(12, 30, 1.1)
	b := p.Predict(12, 30, 1.1)
	if a != b {
		t.Errorf("expected identical predictions, got %v and %v", a, b)
	}
}

func TestPredict_NegativeAccepted(t *testing.T) {
	reg := &recordingRegressor{
		features: []string{FeatureTireAge},
		fn:       func(row []float64) float64 { return -0.03 },
	}
	p, _ := New(reg)
	if got := p.Predict(1, 0, 0); got != -0.03 {
		t.Errorf("expected -0.03, got %v", got)
	}
}

func TestFeatures_ReturnsCopy(t *testing.T) {
	p, _ := New(&recordingRegressor{features: []string{FeatureTireAge, FeatureTrackTemp}})
	f := p.Features()
	f[0] = "mutated"
	if p.Features()[0] != FeatureTireAge {
		t.Error("Features must not expose internal state")
	}
}

func TestBuildInput_SkipsUnknown(t *testing.T) {
	in := BuildInput([]string{"RAIN", FeatureTireAge}, Conditions{TireAgeLaps: 3})
	if len(in.Names) != 1 || in.Names[0] != FeatureTireAge {
		t.Errorf("unexpected input: %+v", in)
	}
	if v, ok := in.Get(FeatureTireAge); !ok || v != 3 {
		t.Errorf("expected tire age 3, got %v (%v)", v, ok)
	}
}

func TestLoadError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := error(&LoadError{Circuit: "VIR", Path: "/data/VIR/model.json", Err: cause})

	if !errors.Is(err, ErrUnavailable) {
		t.Error("LoadError must match ErrUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("LoadError must wrap its cause")
	}

	var le *LoadError
	if !errors.As(err, &le) || le.Circuit != "VIR" {
		t.Errorf("errors.As failed: %v", err)
	}
}
