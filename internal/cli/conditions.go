package cli

import (
	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/dataset"
	"github.com/haskel/pitwall/internal/engine"
)

// conditionFlags are the track and driver inputs shared by the calculator
// commands.
type conditionFlags struct {
	tireAge    int
	temp       float64
	aggression float64
}

func (c *conditionFlags) register(cmd *cobra.Command, tireAgeFlag string) {
	f := cmd.Flags()
	if tireAgeFlag != "" {
		f.IntVar(&c.tireAge, tireAgeFlag, dataset.TireAgeDefault, "laps on the current tyres")
	}
	f.Float64Var(&c.temp, "temp", 0, "track temperature in °C (default: middle of the circuit's history)")
	f.Float64Var(&c.aggression, "aggression", 0, "driver aggressiveness in lateral g (default: middle of the circuit's history)")
}

// resolve fills the temperature and aggressiveness left unset on the
// command line with the defaults derived from the circuit's lap history.
// Circuits without history use the fixed fallback ranges.
func (c *conditionFlags) resolve(cmd *cobra.Command, client *Client, circuit string) error {
	tempSet := cmd.Flags().Changed("temp")
	aggSet := cmd.Flags().Changed("aggression")
	if tempSet && aggSet {
		return nil
	}

	temp := (dataset.FallbackTempMin + dataset.FallbackTempMax) / 2.0
	agg := (dataset.FallbackAggMin + dataset.FallbackAggMax) / 2.0

	var detail engine.CircuitDetail
	if _, err := client.Call(circuitPath(circuit, ""), nil, &detail); err != nil {
		return err
	}
	if detail.Ranges != nil {
		temp = detail.Ranges.TrackTemp.Default
		agg = detail.Ranges.Aggressiveness.Default
	}

	if !tempSet {
		c.temp = temp
	}
	if !aggSet {
		c.aggression = agg
	}
	return nil
}
