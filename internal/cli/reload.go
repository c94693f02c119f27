package cli

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/engine"
)

var reloadCmd = &cobra.Command{
	Use:   "reload [circuit]",
	Short: "Reload the server configuration or one circuit's model",
	Long: `Without arguments, send SIGHUP to the server so it rereads its
configuration and drops every cached model.

With a circuit, ask the running server to reload that circuit's model
and report whether it is usable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReload,
}

func init() {
	reloadCmd.Flags().StringVar(&pidFile, "pid-file", "", "PID file path (overrides config)")
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return reloadCircuit(cmd, args[0])
	}

	pid, err := signalServer(syscall.SIGHUP)
	if err != nil {
		return err
	}

	if jsonOut {
		fmt.Fprintf(out(cmd), `{"status":"reload_requested","pid":%d}`+"\n", pid)
	} else {
		fmt.Fprintf(out(cmd), "Sent SIGHUP to process %d (configuration reload requested)\n", pid)
	}
	return nil
}

func reloadCircuit(cmd *cobra.Command, circuit string) error {
	var resp engine.ReloadResponse
	data, err := NewClient().Call(circuitPath(circuit, "reload"), struct{}{}, &resp)
	if err != nil {
		return err
	}
	if jsonOut {
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}

	w := out(cmd)
	if resp.Available {
		fmt.Fprintf(w, "%s: model reloaded (features: %s)\n", resp.Circuit, joinOrNone(resp.Features))
		return nil
	}
	fmt.Fprintf(w, "%s: model unavailable: %s\n", resp.Circuit, resp.Error)
	return nil
}
