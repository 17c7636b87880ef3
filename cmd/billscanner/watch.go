package main

import (
	"context"

	"github.com/spf13/cobra"

	"BillScanner/internal/app"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Scan now and then on the configured interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				return a.Watch(ctx)
			})
		},
	}
}
