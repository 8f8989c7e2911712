package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"sim-dashboard/internal/config"
	"sim-dashboard/internal/fixtures"
	"sim-dashboard/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		useMemory bool
		host      string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if useMemory {
				a.cfg.Store.Backend = config.BackendMemory
			}
			if host != "" {
				a.cfg.Dashboard.Host = host
			}
			if port != 0 {
				a.cfg.Dashboard.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&useMemory, "use-memory", false, "Use an in-memory store seeded with demo runs")
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	backend, err := openBackend(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer closeBackend(a, backend)

	if a.cfg.Store.Backend == config.BackendMemory {
		demo := fixtures.Demo()
		if err := fixtures.Load(ctx, backend, demo); err != nil {
			return err
		}
		a.logger.Info().Int("runs", len(demo.Executions)).Msg("seeded in-memory store with demo runs")
	}

	svc, err := a.newService(backend)
	if err != nil {
		return err
	}

	d := a.cfg.Dashboard
	srv := httpapi.NewServer(httpapi.ServerConfig{
		Host:           d.Host,
		Port:           d.Port,
		ReadTimeout:    d.ReadTimeout,
		WriteTimeout:   d.WriteTimeout,
		IdleTimeout:    httpapi.DefaultServerConfig().IdleTimeout,
		RequestTimeout: d.RequestTimeout,
	}, svc, a.logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func closeBackend(a *app, b interface{ Close(context.Context) error }) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Close(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("close store")
	}
}
