package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/server"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status and resource usage",
	Long:  `Query the running pitwall server for its data directory, cached models and resource usage.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status server.StatusResponse
	data, err := NewClient().Call("/status", nil, &status)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if jsonOut {
		fmt.Fprintln(out(cmd), string(data))
		return nil
	}
	printStatus(out(cmd), &status)
	return nil
}
