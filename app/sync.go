package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"restaurant-sync/services"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronisation of every configured data-set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := buildComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			report, runErr := c.syncer.Run(ctx)
			if !quiet {
				svc := services.NewReportService(logger, cmd.OutOrStdout())
				svc.Print(report, svc.Generate(report))
			}
			if runErr != nil {
				return fmt.Errorf("sync finished with failures: %w", runErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the run report")
	return cmd
}

// runOnce is the scheduled job body: it never returns an error, failures are
// already logged by the syncer.
func runOnce(ctx context.Context, c *components) {
	report, err := c.syncer.Run(ctx)
	if err != nil {
		c.logger.Warn("[app] run %s: %d data-set(s) failed", report.RunID, len(report.Failed()))
		return
	}
	c.logger.Info("[app] run %s upserted %d rows", report.RunID, report.TotalUpserted())
}
