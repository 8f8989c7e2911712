package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"sim-dashboard/internal/reporting"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "report <exeId>",
		Short: "Render one run as markdown or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exeID := args[0]

			backend, err := openBackend(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeBackend(a, backend)

			svc, err := a.newService(backend)
			if err != nil {
				return err
			}

			rv, err := svc.Load(ctx, exeID)
			if err != nil {
				return err
			}

			files := map[string]string{}
			switch format {
			case "md":
				files[exeID+"-report.md"] = reporting.RenderMarkdown(reporting.NewGenerator(svc).FromView(rv))
			case "csv":
				files[exeID+"-wallet.csv"] = reporting.RenderWalletCSV(rv.Wallet)
				files[exeID+"-operations.csv"] = reporting.RenderOperationsCSV(rv.OperationSet)
			default:
				return fmt.Errorf("unknown format %q (want md or csv)", format)
			}

			if out == "" {
				for _, name := range sortedKeys(files) {
					fmt.Fprint(cmd.OutOrStdout(), files[name])
				}
				return nil
			}

			if err := os.MkdirAll(out, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			for _, name := range sortedKeys(files) {
				path := filepath.Join(out, name)
				if err := os.WriteFile(path, []byte(files[name]), 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				a.logger.Info().Str("path", path).Msg("report written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "Output format: md or csv")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (stdout if empty)")
	return cmd
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
