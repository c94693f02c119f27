package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/haskel/pitwall/internal/config"
	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/logger"
	"github.com/haskel/pitwall/internal/metrics"
	"github.com/haskel/pitwall/internal/monitor"
	"github.com/haskel/pitwall/internal/server"
	"github.com/haskel/pitwall/internal/storage"
)

var dataDir string

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the pitwall server",
	Long:    `Start the pitwall HTTP server in foreground mode.`,
	RunE:    runServe,
}

func init() {
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "", "processed data directory (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// loadServeConfig loads the config file and applies the command line
// overrides.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("pitwall starting",
		"version", Version,
		"config", cfgFile,
		"data_dir", cfg.Data.Dir,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agg := monitor.Default(cfg.MonitoringInterval(), log.Logger)
	agg.Start(ctx)

	var (
		rec      metrics.Recorder = metrics.NopRecorder{}
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prom, err := metrics.NewPromRecorder(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		rec, gatherer = prom, reg
	}

	registry := storage.New(cfg.Data.Dir, log.Logger)
	eng := engine.New(registry, cfg.Simulation, rec, log.Logger)

	circuits, err := eng.ListCircuits()
	if err != nil {
		log.Warn("failed to list circuits", "error", err)
	}
	models := 0
	for _, c := range circuits {
		if c.Model.Exists {
			models++
		}
	}
	log.Info("circuits found", "circuits", len(circuits), "models", models)

	if cfg.Data.Watch {
		go func() {
			if err := registry.Watch(ctx); err != nil {
				log.Warn("model watcher stopped", "error", err)
			}
		}()
	}

	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	srv := server.New(cfg, eng, agg, rec, gatherer, log.Logger, Version)

	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading configuration")

				newCfg, err := loadServeConfig(cmd)
				if err != nil {
					log.Error("invalid configuration, reload aborted", "error", err)
					continue
				}

				log.SetLevel(newCfg.Logging.Level)
				srv.ReloadConfig(newCfg)
			case <-shutdownDone:
				return
			}
		}
	}()

	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	log.Info("pitwall ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("pitwall stopped")
	return nil
}

func writePIDFile(path string) error {
	return os.WriteFile(path, fmt.Appendf(nil, "%d\n", os.Getpid()), 0o644)
}
