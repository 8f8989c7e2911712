package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sim-dashboard/internal/config"
	mongostore "sim-dashboard/internal/storage/mongo"
	"sim-dashboard/internal/storage/migrations"
	pgstore "sim-dashboard/internal/storage/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables or indexes of the configured backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store := a.cfg.Store

			switch store.Backend {
			case config.BackendPostgres:
				pool, err := pgstore.NewPool(ctx, store.PostgresDSN)
				if err != nil {
					return err
				}
				defer pool.Close()
				if err := migrations.RunPostgres(ctx, pool); err != nil {
					return err
				}

			case config.BackendClickhouse:
				conn, err := migrations.RunClickhouse(ctx, store.ClickhouseDSN)
				if err != nil {
					return err
				}
				defer conn.Close()

			case config.BackendMongo:
				client, err := mongostore.Connect(ctx, mongostore.Config{
					URI:            store.Mongo.URI,
					Database:       store.Mongo.Database,
					Collection:     store.Mongo.Collection,
					ConnectTimeout: store.Mongo.ConnectTimeout,
				})
				if err != nil {
					return err
				}
				defer client.Close(ctx)
				if err := client.EnsureIndexes(ctx); err != nil {
					return err
				}

			default:
				return fmt.Errorf("nothing to migrate for backend %q", store.Backend)
			}

			a.logger.Info().Str("backend", store.Backend).Msg("migrations applied")
			return nil
		},
	}
}
