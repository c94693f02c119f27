package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/engine"
)

var predictFlags conditionFlags

var predictCmd = &cobra.Command{
	Use:   "predict <circuit>",
	Short: "Predict the lap delta for the next lap",
	Long: `Predict the time lost against the best lap, for the current tyre age
and for the next lap.

Example:
  pitwall predict sebring --tire-age 12 --temp 38 --aggression 1.1`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	predictFlags.register(predictCmd, "tire-age")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	circuit := args[0]
	client := NewClient()
	if err := predictFlags.resolve(cmd, client, circuit); err != nil {
		return err
	}

	req := engine.PredictRequest{
		TireAgeLaps:    predictFlags.tireAge,
		TrackTempC:     predictFlags.temp,
		Aggressiveness: predictFlags.aggression,
	}
	var resp engine.PredictResponse
	data, err := client.Call(circuitPath(circuit, "predict"), req, &resp)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	printPrediction(out(cmd), &resp)
	return nil
}
