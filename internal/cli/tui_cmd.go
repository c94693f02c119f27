package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/cli/tui"
)

var refreshInterval time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive strategy dashboard",
	Long: `Launch a terminal dashboard for the pit wall: pick a circuit, set the
tyre age, track temperature and driver aggressiveness, and read the next
lap prediction, the caution call and the undercut or overcut verdict.

Examples:
  pitwall tui                    # Connect to localhost:8080
  pitwall tui --host 10.0.0.1    # Connect to a remote server
  pitwall tui --refresh 10s      # Refresh the circuit list more often`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&refreshInterval, "refresh", 30*time.Second, "circuit list refresh interval")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.Config{
		ServerURL:       GetServerURL(),
		RefreshInterval: refreshInterval,
		User:            user,
		Password:        password,
	})
}
