package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/config"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running pitwall server",
	Long:  `Stop the pitwall server by sending SIGTERM to the process named in the PID file.`,
	RunE:  runStop,
}

var pidFile string

func init() {
	stopCmd.Flags().StringVar(&pidFile, "pid-file", "", "PID file path (overrides config)")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := signalServer(syscall.SIGTERM)
	if err != nil {
		return err
	}

	if jsonOut {
		fmt.Fprintf(out(cmd), `{"status":"stopped","pid":%d}`+"\n", pid)
	} else {
		fmt.Fprintf(out(cmd), "Sent SIGTERM to process %d\n", pid)
	}
	return nil
}

// signalServer sends sig to the process recorded in the PID file given by
// --pid-file or the config.
func signalServer(sig syscall.Signal) (int, error) {
	pidPath := pidFile
	if pidPath == "" {
		cfg, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return 0, err
		}
		pidPath = cfg.Server.PIDFile
	}
	if pidPath == "" {
		return 0, errors.New("no PID file specified (use --pid-file or configure in config)")
	}

	pid, err := readPIDFile(pidPath)
	if err != nil {
		return 0, err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("process not found: %d", pid)
	}
	if err := process.Signal(sig); err != nil {
		return 0, fmt.Errorf("failed to send signal: %w", err)
	}
	return pid, nil
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("PID file not found: %s (server may not be running)", path)
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	s := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in file: %q", s)
	}
	return pid, nil
}
