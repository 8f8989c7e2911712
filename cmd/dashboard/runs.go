package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List strategies and their terminated runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			backend, err := openBackend(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeBackend(a, backend)

			svc, err := a.newService(backend)
			if err != nil {
				return err
			}

			strategies := []string{strategy}
			if strategy == "" {
				if strategies, err = svc.Strategies(ctx); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(strategies) == 0 {
				fmt.Fprintln(out, "no terminated runs")
				return nil
			}
			for _, s := range strategies {
				runs, err := svc.Runs(ctx, s)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%d)\n", s, len(runs))
				for _, r := range runs {
					fmt.Fprintf(out, "  %s\n", r.Label)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "Only list runs of this strategy")
	return cmd
}
