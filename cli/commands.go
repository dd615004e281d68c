// Package cli is the sena command line: fleet listing, simulation runs,
// exports and an interactive shell.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tantralabs/sena"
	"github.com/tantralabs/sena/data"
	"github.com/tantralabs/sena/database"
	"github.com/tantralabs/sena/export"
	"github.com/tantralabs/sena/interfaces"
	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/notify"
	"github.com/tantralabs/sena/ratelimit"
	"github.com/tantralabs/sena/settings"
)

type rootFlags struct {
	configFile string
	logLevel   string
	seed       int64
}

// NewRootCmd builds the sena command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cfg := settings.Default()

	rootCmd := &cobra.Command{
		Use:           "sena",
		Short:         "Strategy execution and analytics engine",
		Long:          "sena runs a fleet of simulated trading strategy agents, records every trade and reports their performance.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := settings.Load(cmd.Context(), flags.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel = flags.logLevel
			}
			if cmd.Flags().Changed("seed") {
				loaded.Seed = flags.seed
			}
			logger.SetEncoding(loaded.LogFormat)
			logger.InitLogger(true)
			logger.SetLevel(loaded.LogLevel)
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().Int64Var(&flags.seed, "seed", 0, "random seed, 0 seeds from the clock")

	rootCmd.AddCommand(newAgentsCmd(&cfg))
	rootCmd.AddCommand(newSimulateCmd(&cfg))
	rootCmd.AddCommand(newExportCmd(&cfg))
	rootCmd.AddCommand(newShellCmd(&cfg))
	return rootCmd
}

func newAgentsCmd(cfg *settings.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the registered agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := sena.NewFleet(*cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAgents(orch.StatusAll()))
			return nil
		},
	}
}

type runFlags struct {
	ticks    int
	agents   []string
	csvFiles []string
	fromDB   bool
	start    string
	end      string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.ticks, "ticks", 1000, "ticks to simulate, 0 runs until the source is exhausted")
	cmd.Flags().StringSliceVar(&f.agents, "agents", nil, "agents to start (default all)")
	cmd.Flags().StringSliceVar(&f.csvFiles, "csv", nil, "replay candles from these csv files instead of simulating")
	cmd.Flags().BoolVar(&f.fromDB, "db", false, "replay candles from postgres instead of simulating")
	cmd.Flags().StringVar(&f.start, "start", "", "first candle to replay from postgres, RFC3339")
	cmd.Flags().StringVar(&f.end, "end", "", "last candle to replay from postgres, RFC3339 (default now)")
}

// source picks the tick source requested by the flags, nil meaning the
// fleet's own simulator.
func (f *runFlags) source(ctx context.Context, cfg settings.Config) (interfaces.TickSource, error) {
	var candles []models.Candle
	for _, fileName := range f.csvFiles {
		loaded, err := data.LoadCSV(fileName)
		if err != nil {
			return nil, err
		}
		candles = database.MergeCandles(candles, loaded)
	}

	if f.fromDB {
		end := time.Now()
		if f.end != "" {
			var err error
			if end, err = time.Parse(time.RFC3339, f.end); err != nil {
				return nil, errors.Wrap(err, "--end")
			}
		}
		start := end.Add(-30 * 24 * time.Hour)
		if f.start != "" {
			var err error
			if start, err = time.Parse(time.RFC3339, f.start); err != nil {
				return nil, errors.Wrap(err, "--start")
			}
		}
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		loaded, err := database.LoadCandles(ctx, db, cfg.Symbol, start, end)
		if err != nil {
			return nil, err
		}
		candles = database.MergeCandles(candles, loaded)
	}

	if len(f.csvFiles) == 0 && !f.fromDB {
		return nil, nil
	}
	logger.Infof("Replaying %d candles", len(candles))
	return data.ReplayCandles(candles, cfg.Simulator.HalfSpread, cfg.Simulator.Fill), nil
}

// run builds the fleet, starts the requested agents and feeds it ticks.
func (f *runFlags) run(ctx context.Context, cfg settings.Config) (*sena.Orchestrator, error) {
	src, err := f.source(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var opts []sena.Option
	if src != nil {
		opts = append(opts, sena.WithTickSource(src))
	}
	hub := notify.NewHub()
	hub.Subscribe("log", notify.LogSink{}, models.EventAgentStarted, models.EventAgentStopped, models.EventError)
	opts = append(opts, sena.WithNotifier(hub))

	orch, err := sena.NewFleet(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if len(f.agents) == 0 {
		orch.StartAll()
	} else {
		for _, name := range f.agents {
			if err := orch.Start(strings.TrimSpace(name)); err != nil {
				return nil, err
			}
		}
	}

	started := time.Now()
	n, err := orch.Run(ctx, f.ticks)
	if err != nil {
		return orch, err
	}
	logger.Infof("Simulated %d ticks in %v", n, time.Since(started).Round(time.Millisecond))
	return orch, nil
}

func newSimulateCmd(cfg *settings.Config) *cobra.Command {
	flags := &runFlags{}
	var outDir string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the fleet over simulated or recorded ticks and report metrics",
		Example: `  sena simulate --ticks 5000 --seed 7
  sena simulate --csv btc_1h.csv --agents grid,dca --out ledgers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := flags.run(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			orch.LogMetrics()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSystem(orch.SystemStatus()))
			fmt.Fprintln(out, renderAllMetrics(orch.List(), orch.MetricsAll()))
			if outDir != "" {
				files, err := orch.SaveLedgers(outDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d ledger files to %s\n", len(files), outDir)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write per agent ledger csv files")
	return cmd
}

func newExportCmd(cfg *settings.Config) *cobra.Command {
	flags := &runFlags{}
	var toInflux, toPostgres bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run the fleet and ship metrics to influxdb and ledgers to postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !toInflux && !toPostgres {
				return errors.New("nothing to export, pass --influx and/or --postgres")
			}
			ctx := cmd.Context()
			orch, err := flags.run(ctx, *cfg)
			if err != nil {
				return err
			}

			if toInflux {
				influx, err := export.NewInflux(cfg.Influx)
				if err != nil {
					return err
				}
				defer influx.Close()
				if err := orch.Publish(influx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published metrics for %d agents to %s\n", len(orch.List()), cfg.Influx.URL)
			}

			if toPostgres {
				db, err := database.Connect(ctx, cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				for _, r := range orch.Reports() {
					if err := database.SaveLedger(ctx, db, r.Trades); err != nil {
						return errors.Wrapf(err, "save %s ledger", r.Agent)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored ledgers in %s\n", cfg.Database.Name)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&toInflux, "influx", false, "write metrics and trades to influxdb")
	cmd.Flags().BoolVar(&toPostgres, "postgres", false, "append the run's ledger entries to the agent_ledger table")
	return cmd
}

func newShellCmd(cfg *settings.Config) *cobra.Command {
	var identity string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Control the fleet interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			hub := notify.NewHub()
			hub.Subscribe("log", notify.LogSink{}, models.EventError)
			orch, err := sena.NewFleet(*cfg, sena.WithNotifier(hub))
			if err != nil {
				return err
			}
			limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window.Duration)
			shell := NewShell(orch, limiter, hub, cmd.OutOrStdout())
			if identity == "" {
				identity = os.Getenv("USER")
			}
			return shell.Run(cmd.Context(), identity, cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&identity, "as", "", "identity used for rate limiting (default $USER)")
	return cmd
}
