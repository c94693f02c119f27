package tui

import (
	"math"
	"time"

	"github.com/haskel/pitwall/internal/dataset"
	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/strategy"
)

// Config holds TUI configuration
type Config struct {
	ServerURL string
	// RefreshInterval is how often the circuit list is refetched.
	RefreshInterval time.Duration
	User            string
	Password        string
}

// field is an editable input of the dashboard.
type field int

const (
	fieldTireAge field = iota
	fieldTemp
	fieldAggression
	fieldLapsRemaining
	fieldTargetLap
	fieldRivalTireAge
	fieldGap
	fieldMode
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldTireAge:       "Tyre age (laps)",
	fieldTemp:          "Track temp (°C)",
	fieldAggression:    "Aggressiveness (g)",
	fieldLapsRemaining: "Laps remaining",
	fieldTargetLap:     "Stay out, pit lap",
	fieldRivalTireAge:  "Rival tyre age",
	fieldGap:           "Gap to rival (s)",
	fieldMode:          "Battle mode",
}

// Inputs are the race conditions the calculators run on.
type Inputs struct {
	TireAge       int
	Temp          float64
	Aggression    float64
	LapsRemaining int
	TargetLap     int
	RivalTireAge  int
	Gap           float64
	Mode          strategy.Mode
}

func defaultInputs() Inputs {
	return Inputs{
		TireAge:       dataset.TireAgeDefault,
		Temp:          (dataset.FallbackTempMin + dataset.FallbackTempMax) / 2,
		Aggression:    (dataset.FallbackAggMin + dataset.FallbackAggMax) / 2,
		LapsRemaining: 15,
		TargetLap:     engine.DefaultTargetPitLap,
		RivalTireAge:  12,
		Gap:           2,
		Mode:          strategy.Undercut,
	}
}

// Model represents the TUI state
type Model struct {
	config Config

	circuits []engine.CircuitSummary
	selected int
	detail   *engine.CircuitDetail
	ranges   dataset.Ranges

	inputs Inputs
	focus  field

	prediction *engine.PredictResponse
	caution    *engine.CautionResponse
	battle     *engine.BattleResponse

	// seq numbers the calculations so answers for stale inputs are
	// dropped.
	seq int

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	return Model{
		config:  cfg,
		inputs:  defaultInputs(),
		ranges:  fallbackRanges(),
		loading: true,
	}
}

func fallbackRanges() dataset.Ranges {
	in := defaultInputs()
	return dataset.Ranges{
		TireAge:        dataset.Range{Min: dataset.TireAgeMin, Max: dataset.TireAgeMax, Default: dataset.TireAgeDefault},
		TrackTemp:      dataset.Range{Min: dataset.FallbackTempMin, Max: dataset.FallbackTempMax, Default: in.Temp, Fallback: true},
		Aggressiveness: dataset.Range{Min: dataset.FallbackAggMin, Max: dataset.FallbackAggMax, Default: in.Aggression, Fallback: true},
	}
}

// circuit returns the selected circuit name, or "" before the list
// arrives.
func (m Model) circuit() string {
	if m.selected < 0 || m.selected >= len(m.circuits) {
		return ""
	}
	return m.circuits[m.selected].Circuit
}

// applyRanges resets the condition inputs to the defaults of a newly
// selected circuit.
func (m *Model) applyRanges(r dataset.Ranges) {
	m.ranges = r
	m.inputs.TireAge = int(r.TireAge.Default)
	m.inputs.Temp = r.TrackTemp.Default
	m.inputs.Aggression = r.Aggressiveness.Default
	m.clamp()
}

// adjust moves the focused input by steps increments.
func (m *Model) adjust(steps int) {
	in := &m.inputs
	switch m.focus {
	case fieldTireAge:
		in.TireAge += steps
	case fieldTemp:
		in.Temp += float64(steps)
	case fieldAggression:
		in.Aggression = round2(in.Aggression + 0.01*float64(steps))
	case fieldLapsRemaining:
		in.LapsRemaining += steps
	case fieldTargetLap:
		in.TargetLap += steps
	case fieldRivalTireAge:
		in.RivalTireAge += steps
	case fieldGap:
		in.Gap = round2(in.Gap + 0.1*float64(steps))
	case fieldMode:
		if in.Mode == strategy.Undercut {
			in.Mode = strategy.Overcut
		} else {
			in.Mode = strategy.Undercut
		}
	}
	m.clamp()
}

// clamp keeps every input inside the dashboard bounds. The target lap
// never exceeds the laps remaining.
func (m *Model) clamp() {
	in := &m.inputs
	in.TireAge = clampInt(in.TireAge, int(m.ranges.TireAge.Min), int(m.ranges.TireAge.Max))
	in.RivalTireAge = clampInt(in.RivalTireAge, int(m.ranges.TireAge.Min), int(m.ranges.TireAge.Max))
	in.Temp = math.Min(math.Max(in.Temp, m.ranges.TrackTemp.Min), m.ranges.TrackTemp.Max)
	in.Aggression = math.Min(math.Max(in.Aggression, m.ranges.Aggressiveness.Min), m.ranges.Aggressiveness.Max)
	in.LapsRemaining = clampInt(in.LapsRemaining, 1, 40)
	in.TargetLap = clampInt(in.TargetLap, 1, in.LapsRemaining)
	in.Gap = math.Min(math.Max(in.Gap, 0), 10)
}

func clampInt(v, low, high int) int {
	return max(low, min(v, high))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
