// Package strategy integrates a lap-delta predictor over a horizon of laps
// to compare pit strategies.
package strategy

import (
	"errors"
	"fmt"
)

// DefaultCycleLaps is the battle horizon used when none is given.
const DefaultCycleLaps = 3

// ErrInvalidParams is returned by Validate for out-of-range inputs.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// LapDeltaPredictor predicts time lost against the best lap for one lap.
// *predictor.Predictor satisfies it.
type LapDeltaPredictor interface {
	Predict(tireAgeLaps int, trackTempC, aggressiveness float64) float64
}

// LapStep is the state of one simulated lap.
type LapStep struct {
	Lap         int     `json:"lap"`
	TireAgeLaps int     `json:"tire_age_laps"`
	Pitted      bool    `json:"pitted"`
	PitCost     float64 `json:"pit_cost"`
	Delta       float64 `json:"delta"`
	Cumulative  float64 `json:"cumulative"`
}

// Trace is the lap by lap record of a simulation.
type Trace struct {
	Laps  []LapStep `json:"laps"`
	Total float64   `json:"total"`
}

// stint describes a single integration pass.
type stint struct {
	tireAge int
	laps    int
	pitLap  int
	pitCost float64
	temp    float64
	agg     float64
}

// integrate runs the per-lap rule. On the pit lap the pit cost is added and
// tyre age resets to 1, on every other lap tyre age grows by one. The lap's
// predicted delta is added after that. A nil trace skips recording.
func integrate(p LapDeltaPredictor, s stint, trace *Trace) float64 {
	total := 0.0
	age := s.tireAge

	if trace != nil {
		trace.Laps = make([]LapStep, 0, max(s.laps, 0))
	}

	for lap := 1; lap <= s.laps; lap++ {
		step := LapStep{Lap: lap}
		if lap == s.pitLap {
			total += s.pitCost
			age = 1
			step.Pitted = true
			step.PitCost = s.pitCost
		} else {
			age++
		}

		delta := p.Predict(age, s.temp, s.agg)
		total += delta

		if trace != nil {
			step.TireAgeLaps = age
			step.Delta = delta
			step.Cumulative = total
			trace.Laps = append(trace.Laps, step)
		}
	}

	if trace != nil {
		trace.Total = total
	}
	return total
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
