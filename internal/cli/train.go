package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/config"
	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/logger"
	"github.com/haskel/pitwall/internal/storage"
)

var (
	trainFeatures []string
	trainModel    string
)

var trainCmd = &cobra.Command{
	Use:   "train <circuit>",
	Short: "Train the lap delta model of a circuit",
	Long: `Fit a regressor on the circuit's processed laps and save it as the
circuit's model in the data directory. A running server with data.watch
enabled picks the new model up on its own.

Example:
  pitwall train sebring --model forest
  pitwall train vir --features Laps_on_this_Tireset,TRACK_TEMP`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.StringSliceVar(&trainFeatures, "features", nil, "feature columns to train on (default: all)")
	f.StringVar(&trainModel, "model", "", "regressor type: mean, linear or forest (overrides config)")
	f.StringVar(&dataDir, "data-dir", "", "processed data directory (overrides config)")
	rootCmd.AddCommand(trainCmd)
}

// localConfig loads the config for commands that work on the data
// directory directly.
func localConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if trainModel != "" {
		cfg.Training.Model = trainModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func localLogger(cmd *cobra.Command) *logger.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), level, "text")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := localConfig()
	if err != nil {
		return err
	}
	log := localLogger(cmd)

	registry := storage.New(cfg.Data.Dir, log.Logger)
	eng := engine.New(registry, cfg.Simulation, nil, log.Logger)

	art, err := eng.Train(args[0], trainFeatures, cfg.Training.ModelConfig())
	if err != nil {
		return err
	}

	w := out(cmd)
	if jsonOut {
		data, err := json.MarshalIndent(struct {
			Circuit  string   `json:"circuit"`
			Type     string   `json:"type"`
			Features []string `json:"features"`
			Path     string   `json:"path"`
			Metrics  any      `json:"metrics"`
		}{art.Circuit, art.Type.String(), art.Features, registry.ModelPath(art.Circuit), art.Metrics}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Trained %s model for %s on %d laps\n", art.Type, art.Circuit, art.Metrics.Samples)
	fmt.Fprintf(w, "  Features: %s\n", joinOrNone(art.Features))
	fmt.Fprintf(w, "  R²:       %.3f\n", art.Metrics.R2)
	fmt.Fprintf(w, "  MAE:      %.3fs\n", art.Metrics.MAE)
	fmt.Fprintf(w, "  Saved to: %s\n", registry.ModelPath(art.Circuit))
	return nil
}
