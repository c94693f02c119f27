// Package calibration holds per-circuit pit lane time loss constants.
package calibration

import (
	"sort"

	"github.com/samber/lo"
)

const (
	// DefaultPitLaneLoss is the green-flag pit cost applied to circuits
	// missing from the table.
	DefaultPitLaneLoss = 36.0

	// YellowPitCost is the time lost pitting under full course yellow.
	// The whole field is slowed, so it is the same on every circuit.
	YellowPitCost = 20.0
)

// Pit lane transit time in seconds, excluding the tyre change itself.
// Keys are the circuit directory names used under the data dir.
var pitLaneLoss = map[string]float64{
	"Barber":       34.0,
	"COTA":         36.0,
	"Indianapolis": 63.0,
	"RoadAmerica":  52.0,
	"Sebring":      39.0,
	"Sonoma":       45.0,
	"VIR":          25.0,
}

// PitCost returns the green-flag pit lane loss for a circuit.
// Unknown circuits get DefaultPitLaneLoss.
func PitCost(circuit string) float64 {
	if v, ok := pitLaneLoss[circuit]; ok {
		return v
	}
	return DefaultPitLaneLoss
}

// Lookup is PitCost that also reports whether the circuit is calibrated.
func Lookup(circuit string) (float64, bool) {
	v, ok := pitLaneLoss[circuit]
	if !ok {
		return DefaultPitLaneLoss, false
	}
	return v, true
}

// Circuits returns the calibrated circuit names, sorted.
func Circuits() []string {
	names := lo.Keys(pitLaneLoss)
	sort.Strings(names)
	return names
}

// Costs bundles both pit costs for one circuit.
type Costs struct {
	Circuit    string  `json:"circuit"`
	Green      float64 `json:"green_pit_cost"`
	Yellow     float64 `json:"yellow_pit_cost"`
	Calibrated bool    `json:"calibrated"`
}

// For returns the pit costs used when simulating on circuit.
func For(circuit string) Costs {
	green, ok := Lookup(circuit)
	return Costs{
		Circuit:    circuit,
		Green:      green,
		Yellow:     YellowPitCost,
		Calibrated: ok,
	}
}
