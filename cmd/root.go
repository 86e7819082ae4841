// Package cmd implements the refugeeflow command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TFMV/refugeeflow/config"
	"github.com/TFMV/refugeeflow/ingest"
	"github.com/TFMV/refugeeflow/telemetry"
	"github.com/TFMV/refugeeflow/view"
)

// flagKeys maps command line flags onto config keys. Only flags present on
// the running command are bound.
var flagKeys = map[string]string{
	"od":             "data.od",
	"inbound":        "data.inbound",
	"outbound":       "data.outbound",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"tracing":        "tracing.enabled",
	"port":           "server.port",
	"max-iterations": "layout.max_iterations",
}

// app carries state shared by the subcommands of one invocation
type app struct {
	cfgFile  string
	v        *viper.Viper
	cfg      *config.Config
	shutdown func(context.Context)
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "refugeeflow",
		Short: "Refugee migration flows by year and direction",
		Long: `refugeeflow aggregates origin/destination refugee tables into
bar charts, Sankey diagrams and laid-out node-link graphs, and serves them
over HTTP next to a per-country choropleth.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default $HOME/"+config.DefaultFile+")")
	flags.String("od", "", "origin/destination table (path or http(s) URL)")
	flags.String("inbound", "", "per-destination table with country codes (defaults to --od)")
	flags.String("outbound", "", "per-origin table (defaults to --od)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.Bool("tracing", false, "print OpenTelemetry spans to stderr")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newLabelsCmd(a))
	return root
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := telemetry.SetupLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	shutdown, err := telemetry.InitTracing(cfg.Tracing.Enabled, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}

	a.v, a.cfg, a.shutdown = v, cfg, shutdown
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.shutdown != nil {
		a.shutdown(context.Background())
	}
	return nil
}

// selector loads the configured tables and builds the label encoder
func (a *app) selector(ctx context.Context) (*view.Selector, error) {
	ds, err := ingest.Load(ctx, a.cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return view.NewSelector(ds, a.cfg.Layout), nil
}
