package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/engine"
)

var (
	cautionFlags  conditionFlags
	lapsRemaining int
	targetPitLap  int
	cautionTrace  bool
)

var cautionCmd = &cobra.Command{
	Use:   "caution <circuit>",
	Short: "Decide whether to pit under caution",
	Long: `Compare pitting now under a caution, at the reduced pit cost, with
staying out and pitting under green on the target lap.

Example:
  pitwall caution sebring --tire-age 14 --laps-remaining 15 --target-lap 8`,
	Args: cobra.ExactArgs(1),
	RunE: runCaution,
}

func init() {
	cautionFlags.register(cautionCmd, "tire-age")
	cautionCmd.Flags().IntVar(&lapsRemaining, "laps-remaining", 15, "laps left in the race")
	cautionCmd.Flags().IntVar(&targetPitLap, "target-lap", 0, "lap of the planned green-flag stop (default: min(10, laps remaining))")
	cautionCmd.Flags().BoolVar(&cautionTrace, "trace", false, "print the lap by lap simulation")
	rootCmd.AddCommand(cautionCmd)
}

func runCaution(cmd *cobra.Command, args []string) error {
	circuit := args[0]
	client := NewClient()
	if err := cautionFlags.resolve(cmd, client, circuit); err != nil {
		return err
	}

	req := engine.CautionRequest{
		TireAgeLaps:    cautionFlags.tireAge,
		LapsRemaining:  lapsRemaining,
		TrackTempC:     cautionFlags.temp,
		Aggressiveness: cautionFlags.aggression,
		TargetPitLap:   targetPitLap,
		Trace:          cautionTrace || verbose,
	}
	var resp engine.CautionResponse
	data, err := client.Call(circuitPath(circuit, "caution"), req, &resp)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	printCaution(out(cmd), &resp)
	return nil
}
