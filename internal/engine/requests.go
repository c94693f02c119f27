package engine

import (
	"fmt"
	"math"

	"github.com/haskel/pitwall/internal/calibration"
	"github.com/haskel/pitwall/internal/predictor"
	"github.com/haskel/pitwall/internal/strategy"
)

// DefaultTargetPitLap is the planned green-flag stop used when a caution
// request does not name one.
const DefaultTargetPitLap = 10

type PredictRequest struct {
	TireAgeLaps    int     `json:"tire_age_laps"`
	TrackTempC     float64 `json:"track_temp_c"`
	Aggressiveness float64 `json:"aggressiveness"`
}

func (r PredictRequest) conditions() predictor.Conditions {
	return predictor.Conditions{
		TireAgeLaps:          r.TireAgeLaps,
		TrackTempC:           r.TrackTempC,
		DriverAggressiveness: r.Aggressiveness,
	}
}

func (r PredictRequest) validate(maxTireAge int) error {
	switch {
	case r.TireAgeLaps < 1:
		return invalid("tire_age_laps must be at least 1")
	case maxTireAge > 0 && r.TireAgeLaps > maxTireAge:
		return invalid("tire_age_laps must not exceed %d", maxTireAge)
	}
	return checkFinite(r.TrackTempC, r.Aggressiveness)
}

type PredictResponse struct {
	Circuit        string   `json:"circuit"`
	TireAgeLaps    int      `json:"tire_age_laps"`
	Delta          float64  `json:"delta"`
	NextLapTireAge int      `json:"next_lap_tire_age"`
	NextLapDelta   float64  `json:"next_lap_delta"`
	Features       []string `json:"features"`
	IgnoredInputs  []string `json:"ignored_inputs,omitempty"`
}

type CautionRequest struct {
	TireAgeLaps    int     `json:"tire_age_laps"`
	LapsRemaining  int     `json:"laps_remaining"`
	TrackTempC     float64 `json:"track_temp_c"`
	Aggressiveness float64 `json:"aggressiveness"`
	// TargetPitLap defaults to DefaultTargetPitLap, capped at
	// LapsRemaining.
	TargetPitLap int  `json:"target_pit_lap,omitempty"`
	Trace        bool `json:"trace,omitempty"`
}

type CautionResponse struct {
	Circuit       string                  `json:"circuit"`
	Costs         calibration.Costs       `json:"costs"`
	TargetPitLap  int                     `json:"target_pit_lap"`
	Verdict       strategy.CautionVerdict `json:"verdict"`
	PitNowTrace   *strategy.Trace         `json:"pit_now_trace,omitempty"`
	StayOutTrace  *strategy.Trace         `json:"stay_out_trace,omitempty"`
	IgnoredInputs []string                `json:"ignored_inputs,omitempty"`
}

type BattleRequest struct {
	// Mode defaults to undercut.
	Mode             strategy.Mode `json:"mode"`
	OwnTireAgeLaps   int           `json:"own_tire_age_laps"`
	RivalTireAgeLaps int           `json:"rival_tire_age_laps"`
	TrackTempC       float64       `json:"track_temp_c"`
	Aggressiveness   float64       `json:"aggressiveness"`
	GapSeconds       float64       `json:"gap_seconds"`
	Trace            bool          `json:"trace,omitempty"`
}

type BattleResponse struct {
	Circuit       string                 `json:"circuit"`
	Costs         calibration.Costs      `json:"costs"`
	CycleLaps     int                    `json:"cycle_laps"`
	Verdict       strategy.BattleVerdict `json:"verdict"`
	Summary       string                 `json:"summary"`
	OwnTrace      *strategy.Trace        `json:"own_trace,omitempty"`
	RivalTrace    *strategy.Trace        `json:"rival_trace,omitempty"`
	IgnoredInputs []string               `json:"ignored_inputs,omitempty"`
}

type ReloadResponse struct {
	Circuit   string   `json:"circuit"`
	Available bool     `json:"available"`
	Features  []string `json:"features,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func checkFinite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("inputs must be finite numbers")
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", strategy.ErrInvalidParams, fmt.Sprintf(format, args...))
}
