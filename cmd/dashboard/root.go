package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sim-dashboard/internal/config"
	"sim-dashboard/internal/logging"
)

// app is the state shared by all subcommands after flag parsing.
type app struct {
	configPath string
	envFile    string
	backend    string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Simulation analytics dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "Path to .env file (ignored if missing)")
	flags.StringVar(&a.backend, "backend", "", "Record store backend: mongo, postgres, clickhouse, memory")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format (console, json)")

	root.AddCommand(
		newServeCmd(a),
		newRunsCmd(a),
		newReportCmd(a),
		newSeedCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and sets up logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}

	if a.backend != "" {
		cfg.Store.Backend = a.backend
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
