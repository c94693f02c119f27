package strategy

import "fmt"

// BattleParams describes one car over a pit cycle.
type BattleParams struct {
	InitialTireAgeLaps int     `json:"initial_tire_age_laps"`
	TrackTempC         float64 `json:"track_temp_c"`
	Aggressiveness     float64 `json:"aggressiveness"`
	PitLap             int     `json:"pit_lap"`
	GreenPitCost       float64 `json:"green_pit_cost"`
	// CycleLaps defaults to DefaultCycleLaps when zero.
	CycleLaps int `json:"cycle_laps"`
}

func (b BattleParams) stint() stint {
	laps := b.CycleLaps
	if laps == 0 {
		laps = DefaultCycleLaps
	}
	return stint{
		tireAge: b.InitialTireAgeLaps,
		laps:    laps,
		pitLap:  b.PitLap,
		pitCost: b.GreenPitCost,
		temp:    b.TrackTempC,
		agg:     b.Aggressiveness,
	}
}

// SimulateBattle returns the time lost by one car over the cycle. Battle
// pits always cost the green-flag time. A PitLap outside the cycle means
// the car does not pit.
func SimulateBattle(p LapDeltaPredictor, params BattleParams) float64 {
	return integrate(p, params.stint(), nil)
}

// TraceBattle is SimulateBattle keeping every lap.
func TraceBattle(p LapDeltaPredictor, params BattleParams) Trace {
	var t Trace
	integrate(p, params.stint(), &t)
	return t
}

// Mode selects which car stops first.
type Mode string

const (
	// Undercut: we pit on lap 1, the rival on lap 2.
	Undercut Mode = "undercut"
	// Overcut: the rival pits on lap 1, we pit on lap 2.
	Overcut Mode = "overcut"
)

// IsValid reports whether the mode is known.
func (m Mode) IsValid() bool {
	return m == Undercut || m == Overcut
}

func (m Mode) String() string {
	return string(m)
}

// PitLaps returns the own and rival pit laps for the mode.
func (m Mode) PitLaps() (own, rival int) {
	if m == Overcut {
		return 2, 1
	}
	return 1, 2
}

// Battle describes an undercut or overcut attempt on the car ahead.
type Battle struct {
	Mode             Mode    `json:"mode"`
	OwnTireAgeLaps   int     `json:"own_tire_age_laps"`
	RivalTireAgeLaps int     `json:"rival_tire_age_laps"`
	TrackTempC       float64 `json:"track_temp_c"`
	Aggressiveness   float64 `json:"aggressiveness"`
	GreenPitCost     float64 `json:"green_pit_cost"`
	GapSeconds       float64 `json:"gap_seconds"`
	CycleLaps        int     `json:"cycle_laps,omitempty"`
}

// Validate checks the battle against the maximum tyre age. A zero limit
// disables the check.
func (b Battle) Validate(maxTireAge int) error {
	switch {
	case !b.Mode.IsValid():
		return invalid("mode must be %q or %q", Undercut, Overcut)
	case b.OwnTireAgeLaps < 1 || b.RivalTireAgeLaps < 1:
		return invalid("tire ages must be at least 1")
	case maxTireAge > 0 && (b.OwnTireAgeLaps > maxTireAge || b.RivalTireAgeLaps > maxTireAge):
		return invalid("tire ages must not exceed %d", maxTireAge)
	case b.GapSeconds < 0:
		return invalid("gap_seconds must not be negative")
	case b.GreenPitCost < 0:
		return invalid("green_pit_cost must not be negative")
	case b.CycleLaps < 0:
		return invalid("cycle_laps must not be negative")
	case b.CycleLaps > 0 && b.CycleLaps < 2:
		return invalid("cycle_laps must cover both pit laps")
	}
	return nil
}

// BattleVerdict is the outcome of a battle simulation.
type BattleVerdict struct {
	Mode       Mode    `json:"mode"`
	OwnTotal   float64 `json:"own_total"`
	RivalTotal float64 `json:"rival_total"`
	// NetGain is RivalTotal - OwnTotal.
	NetGain float64 `json:"net_gain"`
	Gap     float64 `json:"gap"`
	// Margin is NetGain - Gap: by how much the swap succeeds or misses.
	Margin  float64 `json:"margin"`
	Success bool    `json:"success"`
}

func (v BattleVerdict) String() string {
	if v.Success {
		return fmt.Sprintf("%s succeeds by %.2fs", v.Mode, v.Margin)
	}
	return fmt.Sprintf("%s fails by %.2fs", v.Mode, -v.Margin)
}

// Params returns the simulation of one car of the battle.
func (b Battle) Params(tireAgeLaps, pitLap int) BattleParams {
	return BattleParams{
		InitialTireAgeLaps: tireAgeLaps,
		TrackTempC:         b.TrackTempC,
		Aggressiveness:     b.Aggressiveness,
		PitLap:             pitLap,
		GreenPitCost:       b.GreenPitCost,
		CycleLaps:          b.CycleLaps,
	}
}

// DecideBattle simulates both cars over the cycle. The swap succeeds when
// the net gain is strictly greater than the gap.
func DecideBattle(p LapDeltaPredictor, b Battle) BattleVerdict {
	ownLap, rivalLap := b.Mode.PitLaps()
	own := SimulateBattle(p, b.Params(b.OwnTireAgeLaps, ownLap))
	rival := SimulateBattle(p, b.Params(b.RivalTireAgeLaps, rivalLap))

	gain := rival - own
	return BattleVerdict{
		Mode:       b.Mode,
		OwnTotal:   own,
		RivalTotal: rival,
		NetGain:    gain,
		Gap:        b.GapSeconds,
		Margin:     gain - b.GapSeconds,
		Success:    gain > b.GapSeconds,
	}
}
