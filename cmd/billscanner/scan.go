package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"BillScanner/internal/app"
	"BillScanner/internal/infrastructure/report"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan and write the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}
}

func runScan(cmd *cobra.Command, opts *rootOptions) error {
	return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
		result, err := a.Run(ctx)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), report.Render(result, nil))
		return err
	})
}
