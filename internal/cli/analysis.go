package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/engine"
)

var analysisCar string

var analysisCmd = &cobra.Command{
	Use:   "analysis <circuit>",
	Short: "Summarise the lap history of a circuit",
	Long: `Show the mean lap delta by tyre age across the field and the sector
by sector wear trend of one car.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalysis,
}

func init() {
	analysisCmd.Flags().StringVar(&analysisCar, "car", "", "car number for the sector trends (default: first car)")
	rootCmd.AddCommand(analysisCmd)
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	path := circuitPath(args[0], "analysis")
	if analysisCar != "" {
		path += "?" + url.Values{"car": {analysisCar}}.Encode()
	}

	var a engine.Analysis
	data, err := NewClient().Call(path, nil, &a)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	printAnalysis(out(cmd), &a)
	return nil
}
