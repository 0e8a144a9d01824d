package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/fem-labs/partheat"
	"github.com/fem-labs/partheat/internal/config"
	"github.com/fem-labs/partheat/internal/logging"
)

const helpDescription = `
Run one participant of a partitioned heat-conduction simulation.

The participant solves transient heat conduction on half of the unit
square and exchanges interface temperature or flux with its peer through
a shared coupling directory; start both roles against the same directory.

The Dirichlet participant receives interface temperatures and returns
fluxes; the Neumann participant receives fluxes and returns temperatures.
Configure via file, environment (PARTHEAT_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  partheat --role Dirichlet --coupling-dir /shared/run
  partheat --role Neumann --coupling-dir /shared/run --projection area-weighted
  partheat --config ./participant.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string
	var pollInterval string

	root := &cobra.Command{
		Use:     "partheat",
		Short:   "Partitioned heat-conduction coupling participant",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build the set of explicitly set flags; file and env values
			// never override them.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgPath != "" && config.FileExists(cfgPath) {
				fc, err := config.LoadFileConfig(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			if err := config.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if pollInterval != "" {
				d, err := time.ParseDuration(pollInterval)
				if err != nil {
					return fmt.Errorf("parse poll-interval: %w", err)
				}
				cfg.PollInterval = d
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("parse log-level: %w", err)
			}
			logger := logging.New(level)

			logger.Info().Interface("config", cfg).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return partheat.Run(ctx, cfg, logger)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&cfgPath, "config", "c", "", "path to TOML config file")
	flags.StringVar(&cfg.Role, "role", cfg.Role, "coupling role: Dirichlet or Neumann")
	flags.IntVar(&cfg.Elements, "elements", cfg.Elements, "mesh elements per unit-square edge")
	flags.Float64Var(&cfg.Diffusivity, "diffusivity", cfg.Diffusivity, "heat conduction coefficient")
	flags.Float64Var(&cfg.Timestep, "timestep", cfg.Timestep, "maximum local step size")
	flags.Float64Var(&cfg.EndTime, "end-time", cfg.EndTime, "simulation end time")
	flags.Float64Var(&cfg.WindowSize, "window-size", cfg.WindowSize, "coupling window length (defaults to timestep)")
	flags.IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "sub-iterations per window (1 = explicit)")
	flags.Float64Var(&cfg.ConvTol, "conv-tol", cfg.ConvTol, "implicit convergence tolerance")
	flags.StringVar(&cfg.Projection, "projection", cfg.Projection, "flux projection: least-squares or area-weighted")
	flags.Float64Var(&cfg.Droptol, "droptol", cfg.Droptol, "row-support threshold")
	flags.IntVar(&cfg.SubSamples, "sub-samples", cfg.SubSamples, "production points per interface element")
	flags.StringVar(&cfg.CouplingDir, "coupling-dir", cfg.CouplingDir, "shared coupling directory")
	flags.StringVar(&cfg.Participant, "participant", cfg.Participant, "participant name (derived from role)")
	flags.StringVar(&cfg.Peer, "peer", cfg.Peer, "peer participant name (derived from role)")
	flags.StringVar(&cfg.ErrorLog, "error-log", cfg.ErrorLog, "per-window error log path (\"-\" disables)")
	flags.StringVar(&pollInterval, "poll-interval", "", "peer file polling period (e.g. 50ms)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: trace, debug, info, warn, error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
