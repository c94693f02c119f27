package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/strategy"
)

var (
	battleFlags  conditionFlags
	battleMode   string
	rivalTireAge int
	gapSeconds   float64
	battleTrace  bool
)

var battleCmd = &cobra.Command{
	Use:   "battle <circuit>",
	Short: "Check whether an undercut or overcut works",
	Long: `Simulate the pit cycle of our car and the car ahead and report whether
the swap gains more than the gap between them.

Example:
  pitwall battle sebring --mode undercut --own-tire-age 15 --rival-tire-age 12 --gap 2`,
	Args: cobra.ExactArgs(1),
	RunE: runBattle,
}

func init() {
	battleFlags.register(battleCmd, "own-tire-age")
	f := battleCmd.Flags()
	f.StringVar(&battleMode, "mode", string(strategy.Undercut), "undercut or overcut")
	f.IntVar(&rivalTireAge, "rival-tire-age", 12, "laps on the rival's tyres")
	f.Float64Var(&gapSeconds, "gap", 2, "gap to the rival in seconds")
	f.BoolVar(&battleTrace, "trace", false, "print the lap by lap simulation")
	rootCmd.AddCommand(battleCmd)
}

func runBattle(cmd *cobra.Command, args []string) error {
	mode := strategy.Mode(battleMode)
	if !mode.IsValid() {
		return fmt.Errorf("invalid mode %q: must be %s or %s", battleMode, strategy.Undercut, strategy.Overcut)
	}

	circuit := args[0]
	client := NewClient()
	if err := battleFlags.resolve(cmd, client, circuit); err != nil {
		return err
	}

	req := engine.BattleRequest{
		Mode:             mode,
		OwnTireAgeLaps:   battleFlags.tireAge,
		RivalTireAgeLaps: rivalTireAge,
		TrackTempC:       battleFlags.temp,
		Aggressiveness:   battleFlags.aggression,
		GapSeconds:       gapSeconds,
		Trace:            battleTrace || verbose,
	}
	var resp engine.BattleResponse
	data, err := client.Call(circuitPath(circuit, "battle"), req, &resp)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	printBattle(out(cmd), &resp)
	return nil
}
