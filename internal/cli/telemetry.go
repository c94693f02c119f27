package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/telemetry"
)

var (
	telemetryFormat string
	telemetryOut    string
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry <raw.csv>",
	Short: "Score driver aggressiveness per lap from raw telemetry",
	Long: `Average the absolute lateral acceleration of every lap of every car in
a raw telemetry export. The result is written as parquet or CSV, chosen by
the --out extension, or as CSV on stdout.

Example:
  pitwall telemetry R1_telemetry.csv --out processed_data/sebring/aggression.parquet
  pitwall telemetry vir.csv --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runTelemetry,
}

func init() {
	f := telemetryCmd.Flags()
	f.StringVar(&telemetryFormat, "format", string(telemetry.FormatLong), "input layout: long or json")
	f.StringVarP(&telemetryOut, "out", "o", "", "output file (.parquet or .csv)")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, stats, err := telemetry.Aggregate(ctx, in, telemetry.Format(telemetryFormat))
	if err != nil {
		return err
	}
	localLogger(cmd).Debug("telemetry aggregated",
		"rows", stats.Rows,
		"readings", stats.Readings,
		"skipped", stats.Skipped,
		"laps", len(rows),
	)

	w := out(cmd)
	if telemetryOut == "" {
		if jsonOut {
			return json.NewEncoder(w).Encode(rows)
		}
		return telemetry.WriteCSV(w, rows)
	}

	if err := telemetry.Write(telemetryOut, rows); err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(w).Encode(struct {
			Path  string          `json:"path"`
			Laps  int             `json:"laps"`
			Stats telemetry.Stats `json:"stats"`
		}{telemetryOut, len(rows), stats})
	}
	fmt.Fprintf(w, "Wrote %d laps to %s (%d readings, %d rows skipped)\n",
		len(rows), telemetryOut, stats.Readings, stats.Skipped)
	return nil
}
