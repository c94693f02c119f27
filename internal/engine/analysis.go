package engine

import (
	"fmt"
	"slices"

	"github.com/haskel/pitwall/internal/dataset"
	"github.com/haskel/pitwall/internal/strategy"
)

// Analysis summarises the lap history of a circuit.
type Analysis struct {
	Circuit     string                     `json:"circuit"`
	Sources     []string                   `json:"sources"`
	Laps        int                        `json:"laps"`
	Ranges      dataset.Ranges             `json:"ranges"`
	Drivers     []string                   `json:"drivers"`
	Degradation []dataset.DegradationPoint `json:"degradation"`
	// Car is the driver the sector trends belong to.
	Car          string          `json:"car,omitempty"`
	SectorTrends []dataset.Trend `json:"sector_trends,omitempty"`
}

// Analysis loads the circuit's laps. Sector trends are fitted for car, or
// for the first driver when car is empty.
func (e *Engine) Analysis(circuit, car string) (*Analysis, error) {
	if err := e.checkCircuit(circuit); err != nil {
		return nil, err
	}
	ds, err := e.registry.Dataset(circuit)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Circuit:     circuit,
		Sources:     ds.Sources,
		Laps:        len(ds.Laps),
		Ranges:      ds.Ranges(),
		Drivers:     ds.Drivers(),
		Degradation: ds.Degradation(),
	}

	switch {
	case car == "" && len(a.Drivers) > 0:
		car = a.Drivers[0]
	case car != "" && !slices.Contains(a.Drivers, car):
		return nil, fmt.Errorf("%w: car %s did not race at %s", strategy.ErrInvalidParams, car, circuit)
	}
	if car != "" {
		a.Car = car
		a.SectorTrends = ds.SectorTrends(car)
	}
	return a, nil
}
