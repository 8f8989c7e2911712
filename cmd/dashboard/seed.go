package main

import (
	"errors"

	"github.com/spf13/cobra"

	"sim-dashboard/internal/config"
	"sim-dashboard/internal/fixtures"
)

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a JSON fixture, or the demo runs, into the record store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Store.Backend == config.BackendMemory {
				return errors.New("seed needs a persistent backend")
			}

			ds := fixtures.Demo()
			if file != "" {
				var err error
				if ds, err = fixtures.ReadFile(file); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			backend, err := openBackend(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeBackend(a, backend)

			if err := fixtures.Load(ctx, backend, ds); err != nil {
				return err
			}

			a.logger.Info().
				Str("backend", a.cfg.Store.Backend).
				Int("executions", len(ds.Executions)).
				Int("snapshots", len(ds.Wallet)).
				Int("operations", len(ds.Operations)).
				Msg("seeded")
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON fixture file (demo runs if empty)")
	return cmd
}
