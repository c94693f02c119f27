package strategy

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type call struct {
	age  int
	temp float64
	agg  float64
}

// fakePredictor returns 0.1 * tyre age and records every call.
type fakePredictor struct {
	calls []call
}

func (f *fakePredictor) Predict(age int, temp, agg float64) float64 {
	f.calls = append(f.calls, call{age, temp, agg})
	return 0.1 * float64(age)
}

func (f *fakePredictor) ages() []int {
	out := make([]int, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.age
	}
	return out
}

type constPredictor float64

func (c constPredictor) Predict(int, float64, float64) float64 { return float64(c) }

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func scenarioParams(pitNow bool) RemainingParams {
	return RemainingParams{
		TireAgeLaps:    10,
		LapsRemaining:  15,
		TrackTempC:     25,
		Aggressiveness: 1.0,
		PitNow:         pitNow,
		TargetPitLap:   10,
		GreenPitCost:   36.0,
		YellowPitCost:  20.0,
	}
}

func TestSimulateRemaining_PitNowChargesYellowOnLapOne(t *testing.T) {
	p := &fakePredictor{}
	trace := TraceRemaining(p, scenarioParams(true))

	if len(trace.Laps) != 15 {
		t.Fatalf("expected 15 laps, got %d", len(trace.Laps))
	}

	first := trace.Laps[0]
	if !first.Pitted || first.PitCost != 20.0 {
		t.Errorf("lap 1: expected yellow pit of 20.0, got %+v", first)
	}
	if first.TireAgeLaps != 1 {
		t.Errorf("lap 1: expected tire age reset to 1, got %d", first.TireAgeLaps)
	}

	for _, step := range trace.Laps[1:] {
		if step.Pitted {
			t.Errorf("lap %d: unexpected pit", step.Lap)
		}
	}

	wantAges := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if diff := cmp.Diff(wantAges, p.ages()); diff != "" {
		t.Errorf("tire ages mismatch (-want +got):\n%s", diff)
	}

	// 20 + 0.1 * (1+...+15)
	if !near(trace.Total, 32.0) {
		t.Errorf("expected total 32.0, got %v", trace.Total)
	}
}

func TestSimulateRemaining_StayOutChargesGreenOnTargetLap(t *testing.T) {
	p := &fakePredictor{}
	trace := TraceRemaining(p, scenarioParams(false))

	for _, step := range trace.Laps {
		if step.Lap == 10 {
			if !step.Pitted || step.PitCost != 36.0 || step.TireAgeLaps != 1 {
				t.Errorf("lap 10: expected green pit and reset, got %+v", step)
			}
			continue
		}
		if step.Pitted {
			t.Errorf("lap %d: unexpected pit", step.Lap)
		}
	}

	wantAges := []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 1, 2, 3, 4, 5, 6}
	if diff := cmp.Diff(wantAges, p.ages()); diff != "" {
		t.Errorf("tire ages mismatch (-want +got):\n%s", diff)
	}

	// 36 + 0.1 * (11+...+19) + 0.1 * (1+...+6)
	if !near(trace.Total, 36+13.5+2.1) {
		t.Errorf("expected total %v, got %v", 36+13.5+2.1, trace.Total)
	}
}

func TestSimulateRemaining_ConstantConditionsAndCallCount(t *testing.T) {
	for _, laps := range []int{1, 5, 40} {
		p := &fakePredictor{}
		params := scenarioParams(false)
		params.LapsRemaining = laps
		params.TargetPitLap = 1
		params.TrackTempC = 31.5
		params.Aggressiveness = 0.8

		SimulateRemaining(p, params)

		if len(p.calls) != laps {
			t.Errorf("laps=%d: expected %d predictor calls, got %d", laps, laps, len(p.calls))
		}
		for _, c := range p.calls {
			if c.temp != 31.5 || c.agg != 0.8 {
				t.Errorf("conditions changed during simulation: %+v", c)
			}
		}
	}
}

func TestSimulateRemaining_MatchesTrace(t *testing.T) {
	params := scenarioParams(false)
	total := SimulateRemaining(&fakePredictor{}, params)
	trace := TraceRemaining(&fakePredictor{}, params)

	if total != trace.Total {
		t.Errorf("SimulateRemaining=%v, TraceRemaining=%v", total, trace.Total)
	}
	if last := trace.Laps[len(trace.Laps)-1]; last.Cumulative != trace.Total {
		t.Errorf("last cumulative %v != total %v", last.Cumulative, trace.Total)
	}
}

func TestSimulateRemaining_NonDecreasingWithNonNegativeDeltas(t *testing.T) {
	trace := TraceRemaining(&fakePredictor{}, scenarioParams(false))
	prev := 0.0
	for _, step := range trace.Laps {
		if step.Cumulative < prev {
			t.Fatalf("lap %d: cumulative decreased from %v to %v", step.Lap, prev, step.Cumulative)
		}
		prev = step.Cumulative
	}
}

func TestSimulateRemaining_ZeroPredictorTotalsPitCost(t *testing.T) {
	params := scenarioParams(true)
	if got := SimulateRemaining(constPredictor(0), params); got != 20.0 {
		t.Errorf("pit now: expected 20.0, got %v", got)
	}
	params.PitNow = false
	if got := SimulateRemaining(constPredictor(0), params); got != 36.0 {
		t.Errorf("stay out: expected 36.0, got %v", got)
	}
}

func TestSimulateRemaining_TargetBeyondHorizonNeverPits(t *testing.T) {
	params := scenarioParams(false)
	params.TargetPitLap = 20

	trace := TraceRemaining(&fakePredictor{}, params)
	for _, step := range trace.Laps {
		if step.Pitted {
			t.Fatalf("lap %d: unexpected pit", step.Lap)
		}
	}
}

func TestDecideCaution(t *testing.T) {
	tests := []struct {
		name       string
		predictor  LapDeltaPredictor
		wantPitNow bool
	}{
		{
			name:       "worn tyres favour pitting under caution",
			predictor:  &fakePredictor{},
			wantPitNow: true,
		},
		{
			name:       "cheaper caution stop wins without degradation",
			predictor:  constPredictor(0),
			wantPitNow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DecideCaution(tt.predictor, scenarioParams(false))
			if !near(v.Saving, v.StayOutTotal-v.PitNowTotal) {
				t.Errorf("saving %v != %v - %v", v.Saving, v.StayOutTotal, v.PitNowTotal)
			}
			if v.PitNow != tt.wantPitNow {
				t.Errorf("expected PitNow=%v, got %+v", tt.wantPitNow, v)
			}
		})
	}
}

func TestDecideCaution_StayOutWhenYellowIsExpensive(t *testing.T) {
	params := scenarioParams(false)
	params.YellowPitCost = 50

	v := DecideCaution(constPredictor(0), params)
	if v.PitNow {
		t.Errorf("expected stay out, got %+v", v)
	}
	if !near(v.Saving, -14) {
		t.Errorf("expected saving -14, got %v", v.Saving)
	}
}

func TestDecideCaution_TieStaysOut(t *testing.T) {
	params := scenarioParams(false)
	params.YellowPitCost = 36
	params.TargetPitLap = 1

	v := DecideCaution(constPredictor(0.5), params)
	if v.PitNow {
		t.Errorf("a zero saving must not recommend pitting: %+v", v)
	}
}

func TestSimulateBattle_ResetsOnlyOnPitLap(t *testing.T) {
	p := &fakePredictor{}
	trace := TraceBattle(p, BattleParams{
		InitialTireAgeLaps: 12,
		TrackTempC:         25,
		Aggressiveness:     1.0,
		PitLap:             2,
		GreenPitCost:       36.0,
		CycleLaps:          3,
	})

	want := []LapStep{
		{Lap: 1, TireAgeLaps: 13, Delta: 1.3, Cumulative: 1.3},
		{Lap: 2, TireAgeLaps: 1, Pitted: true, PitCost: 36, Delta: 0.1, Cumulative: 37.4},
		{Lap: 3, TireAgeLaps: 2, Delta: 0.2, Cumulative: 37.6},
	}
	approx := cmp.Comparer(near)
	if diff := cmp.Diff(want, trace.Laps, approx); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
	if len(p.calls) != 3 {
		t.Errorf("expected 3 predictor calls, got %d", len(p.calls))
	}
}

func TestSimulateBattle_DefaultCycle(t *testing.T) {
	p := &fakePredictor{}
	SimulateBattle(p, BattleParams{InitialTireAgeLaps: 5, PitLap: 1, GreenPitCost: 30})
	if len(p.calls) != DefaultCycleLaps {
		t.Errorf("expected %d calls, got %d", DefaultCycleLaps, len(p.calls))
	}
}

func TestSimulateBattle_PitLapOutsideCycle(t *testing.T) {
	for _, pitLap := range []int{0, 4, -1} {
		got := SimulateBattle(constPredictor(0), BattleParams{
			InitialTireAgeLaps: 5,
			PitLap:             pitLap,
			GreenPitCost:       36,
			CycleLaps:          3,
		})
		if got != 0 {
			t.Errorf("pitLap=%d: expected no pit cost, got %v", pitLap, got)
		}
	}
}

func TestDecideBattle(t *testing.T) {
	base := Battle{
		OwnTireAgeLaps:   12,
		RivalTireAgeLaps: 12,
		TrackTempC:       25,
		Aggressiveness:   1.0,
		GreenPitCost:     36,
	}

	t.Run("undercut pits first", func(t *testing.T) {
		b := base
		b.Mode = Undercut
		b.GapSeconds = 0.5

		v := DecideBattle(&fakePredictor{}, b)
		// own: 36+0.1, 0.2, 0.3 ; rival: 1.3, 36+0.1, 0.2
		if !near(v.OwnTotal, 36.6) || !near(v.RivalTotal, 37.6) {
			t.Fatalf("unexpected totals: %+v", v)
		}
		if !near(v.NetGain, 1.0) || !near(v.Margin, 0.5) {
			t.Errorf("unexpected gain/margin: %+v", v)
		}
		if !v.Success {
			t.Errorf("expected success: %+v", v)
		}
	})

	t.Run("overcut mirrors pit laps", func(t *testing.T) {
		b := base
		b.Mode = Overcut
		b.GapSeconds = 0.5

		v := DecideBattle(&fakePredictor{}, b)
		if !near(v.NetGain, -1.0) || v.Success {
			t.Errorf("expected failed overcut with -1.0 gain, got %+v", v)
		}
	})

	t.Run("gain equal to gap fails", func(t *testing.T) {
		b := base
		b.Mode = Undercut
		b.GapSeconds = 0

		v := DecideBattle(constPredictor(0), b)
		if v.NetGain != 0 || v.Success {
			t.Errorf("expected zero gain to fail against zero gap, got %+v", v)
		}
	})
}

func TestRemainingParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RemainingParams)
		wantErr bool
	}{
		{"valid", func(*RemainingParams) {}, false},
		{"zero tire age", func(p *RemainingParams) { p.TireAgeLaps = 0 }, true},
		{"tire age above limit", func(p *RemainingParams) { p.TireAgeLaps = 26 }, true},
		{"no laps", func(p *RemainingParams) { p.LapsRemaining = 0 }, true},
		{"laps above limit", func(p *RemainingParams) { p.LapsRemaining = 41 }, true},
		{"target after horizon", func(p *RemainingParams) { p.TargetPitLap = 16 }, true},
		{"target zero", func(p *RemainingParams) { p.TargetPitLap = 0 }, true},
		{"negative cost", func(p *RemainingParams) { p.GreenPitCost = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scenarioParams(false)
			tt.mutate(&p)
			err := p.Validate(40, 25)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestBattle_Validate(t *testing.T) {
	valid := Battle{Mode: Undercut, OwnTireAgeLaps: 10, RivalTireAgeLaps: 12, GreenPitCost: 36, GapSeconds: 2}
	if err := valid.Validate(25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Battle)
	}{
		{"unknown mode", func(b *Battle) { b.Mode = "sidecut" }},
		{"zero own age", func(b *Battle) { b.OwnTireAgeLaps = 0 }},
		{"rival age above limit", func(b *Battle) { b.RivalTireAgeLaps = 30 }},
		{"negative gap", func(b *Battle) { b.GapSeconds = -0.1 }},
		{"cycle too short", func(b *Battle) { b.CycleLaps = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			if err := b.Validate(25); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestBattleVerdict_String(t *testing.T) {
	ok := BattleVerdict{Mode: Undercut, Margin: 1.25, Success: true}
	if got := ok.String(); got != "undercut succeeds by 1.25s" {
		t.Errorf("unexpected: %q", got)
	}
	miss := BattleVerdict{Mode: Overcut, Margin: -0.5}
	if got := miss.String(); got != "overcut fails by 0.50s" {
		t.Errorf("unexpected: %q", got)
	}
}
