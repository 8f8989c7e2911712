package main

import (
	"context"
	"fmt"

	"sim-dashboard/internal/config"
	"sim-dashboard/internal/dashboard"
	"sim-dashboard/internal/storage"
	chstore "sim-dashboard/internal/storage/clickhouse"
	"sim-dashboard/internal/storage/memory"
	mongostore "sim-dashboard/internal/storage/mongo"
	pgstore "sim-dashboard/internal/storage/postgres"
)

// openBackend connects the configured record store. The caller owns the
// returned backend and must Close it.
func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, err := mongostore.Connect(ctx, mongostore.Config{
			URI:            cfg.Store.Mongo.URI,
			Database:       cfg.Store.Mongo.Database,
			Collection:     cfg.Store.Mongo.Collection,
			ConnectTimeout: cfg.Store.Mongo.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return mongostore.NewAnalyticsStore(client), nil

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return pgstore.NewAnalyticsStore(pool), nil

	case config.BackendClickhouse:
		conn, err := chstore.NewConn(ctx, cfg.Store.ClickhouseDSN)
		if err != nil {
			return nil, err
		}
		return chstore.NewAnalyticsStore(conn), nil

	case config.BackendMemory:
		return memory.NewAnalyticsStore(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// readStore wraps a backend with query metrics and boundary validation.
func readStore(b storage.AnalyticsStore, backend string) storage.AnalyticsStore {
	return storage.NewValidatingStore(storage.NewInstrumentedStore(b, backend))
}

// newService builds the pipeline over store using the configured quote
// currency and time zone.
func (a *app) newService(store storage.AnalyticsStore) (*dashboard.Service, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return dashboard.New(dashboard.Options{
		Store:    readStore(store, a.cfg.Store.Backend),
		Quote:    a.cfg.Dashboard.Quote,
		Location: loc,
		Logger:   a.logger,
	}), nil
}
