package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"BillScanner/internal/app"
	"BillScanner/internal/config"
	"BillScanner/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "billscanner",
		Short: "Track California Assembly bills pending in Senate Appropriations",
		Long: `billscanner finds Assembly bills that cleared the Senate Housing or Judiciary
committee and now sit in Senate Appropriations. New bills are appended to the
tracked list; curated notes, priority and analysis status are never touched.

Run without a subcommand to perform a single scan.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (defaults to $BILL_SCANNER_CONFIG)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newScanCmd(opts), newWatchCmd(opts), newListCmd(opts))
	return root
}

func (o *rootOptions) load() config.Config {
	cfg := config.Load(o.configPath)
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg
}

// withApp builds the application for one command and always closes it.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.Application) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := opts.load()
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			logger.Warn("close application", "error", closeErr)
		}
	}()

	return fn(ctx, application)
}
