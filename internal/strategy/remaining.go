package strategy

// RemainingParams describes a race-remaining simulation.
type RemainingParams struct {
	TireAgeLaps    int     `json:"tire_age_laps"`
	LapsRemaining  int     `json:"laps_remaining"`
	TrackTempC     float64 `json:"track_temp_c"`
	Aggressiveness float64 `json:"aggressiveness"`
	// PitNow pits on lap 1 at YellowPitCost. Otherwise the car pits on
	// TargetPitLap at GreenPitCost.
	PitNow        bool    `json:"pit_now"`
	TargetPitLap  int     `json:"target_pit_lap"`
	GreenPitCost  float64 `json:"green_pit_cost"`
	YellowPitCost float64 `json:"yellow_pit_cost"`
}

func (r RemainingParams) stint() stint {
	s := stint{
		tireAge: r.TireAgeLaps,
		laps:    r.LapsRemaining,
		pitLap:  r.TargetPitLap,
		pitCost: r.GreenPitCost,
		temp:    r.TrackTempC,
		agg:     r.Aggressiveness,
	}
	if r.PitNow {
		s.pitLap = 1
		s.pitCost = r.YellowPitCost
	}
	return s
}

// Validate checks the parameters against the given limits. A zero limit
// disables that check.
func (r RemainingParams) Validate(maxLaps, maxTireAge int) error {
	switch {
	case r.TireAgeLaps < 1:
		return invalid("tire_age_laps must be at least 1")
	case maxTireAge > 0 && r.TireAgeLaps > maxTireAge:
		return invalid("tire_age_laps must not exceed %d", maxTireAge)
	case r.LapsRemaining < 1:
		return invalid("laps_remaining must be at least 1")
	case maxLaps > 0 && r.LapsRemaining > maxLaps:
		return invalid("laps_remaining must not exceed %d", maxLaps)
	case r.TargetPitLap < 1 || r.TargetPitLap > r.LapsRemaining:
		return invalid("target_pit_lap must be between 1 and %d", r.LapsRemaining)
	case r.GreenPitCost < 0 || r.YellowPitCost < 0:
		return invalid("pit costs must not be negative")
	}
	return nil
}

// SimulateRemaining returns the total predicted time lost over the
// remaining laps, pit cost included. It calls p exactly LapsRemaining times.
func SimulateRemaining(p LapDeltaPredictor, params RemainingParams) float64 {
	return integrate(p, params.stint(), nil)
}

// TraceRemaining is SimulateRemaining keeping every lap.
func TraceRemaining(p LapDeltaPredictor, params RemainingParams) Trace {
	var t Trace
	integrate(p, params.stint(), &t)
	return t
}

// CautionVerdict compares pitting under caution now with staying out until
// the target lap.
type CautionVerdict struct {
	PitNowTotal  float64 `json:"pit_now_total"`
	StayOutTotal float64 `json:"stay_out_total"`
	// Saving is StayOutTotal - PitNowTotal. Positive favours pitting now.
	Saving float64 `json:"saving"`
	PitNow bool    `json:"pit_now"`
}

// DecideCaution runs both scenarios with the same target lap. PitNow in
// params is ignored.
func DecideCaution(p LapDeltaPredictor, params RemainingParams) CautionVerdict {
	params.PitNow = true
	now := SimulateRemaining(p, params)
	params.PitNow = false
	later := SimulateRemaining(p, params)

	saving := later - now
	return CautionVerdict{
		PitNowTotal:  now,
		StayOutTotal: later,
		Saving:       saving,
		PitNow:       saving > 0,
	}
}
