package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/server"
)

var circuitsCmd = &cobra.Command{
	Use:   "circuits [circuit]",
	Short: "List circuits or describe one",
	Long: `Without arguments, list every circuit with its pit lane costs and
whether a model and lap data exist.

With a circuit, load its model on the server and show the features it
uses, its fit and the observed condition ranges.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCircuits,
}

func init() {
	rootCmd.AddCommand(circuitsCmd)
}

func runCircuits(cmd *cobra.Command, args []string) error {
	client := NewClient()

	if len(args) == 1 {
		var detail engine.CircuitDetail
		data, err := client.Call(circuitPath(args[0], ""), nil, &detail)
		if err != nil {
			return err
		}
		if jsonOut {
			fmt.Fprintln(out(cmd), string(data))
			return nil
		}
		printCircuit(out(cmd), &detail)
		return nil
	}

	var list server.CircuitsResponse
	data, err := client.Call("/v1/circuits", nil, &list)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	printCircuits(out(cmd), list.Circuits)
	return nil
}
