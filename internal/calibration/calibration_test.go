package calibration

import "testing"

func TestPitCost_KnownCircuits(t *testing.T) {
	tests := []struct {
		circuit string
		want    float64
	}{
		{"Barber", 34.0},
		{"COTA", 36.0},
		{"Indianapolis", 63.0},
		{"RoadAmerica", 52.0},
		{"Sebring", 39.0},
		{"Sonoma", 45.0},
		{"VIR", 25.0},
	}

	for _, tt := range tests {
		if got := PitCost(tt.circuit); got != tt.want {
			t.Errorf("PitCost(%q) = %v, want %v", tt.circuit, got, tt.want)
		}
	}
}

func TestPitCost_UnknownCircuit(t *testing.T) {
	if got := PitCost("Monza"); got != 36.0 {
		t.Errorf("expected default 36.0, got %v", got)
	}
	if got := PitCost(""); got != DefaultPitLaneLoss {
		t.Errorf("expected default for empty name, got %v", got)
	}
	// lookup is case sensitive, like the directory names it is keyed by
	if got := PitCost("vir"); got != DefaultPitLaneLoss {
		t.Errorf("expected default for lower-case name, got %v", got)
	}
}

func TestLookup(t *testing.T) {
	v, ok := Lookup("Sonoma")
	if !ok || v != 45.0 {
		t.Errorf("expected (45, true), got (%v, %v)", v, ok)
	}

	v, ok = Lookup("Laguna")
	if ok || v != DefaultPitLaneLoss {
		t.Errorf("expected (36, false), got (%v, %v)", v, ok)
	}
}

func TestCircuits_Sorted(t *testing.T) {
	names := Circuits()
	if len(names) != 7 {
		t.Fatalf("expected 7 circuits, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("circuits not sorted: %v", names)
		}
	}
}

func TestFor(t *testing.T) {
	c := For("Indianapolis")
	if c.Green != 63.0 || c.Yellow != 20.0 || !c.Calibrated {
		t.Errorf("unexpected costs: %+v", c)
	}

	c = For("Nowhere")
	if c.Green != 36.0 || c.Yellow != YellowPitCost || c.Calibrated {
		t.Errorf("unexpected costs for unknown circuit: %+v", c)
	}
}
