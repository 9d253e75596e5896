package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"restaurant-sync/scheduler"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the weekly sync schedule and expose /metrics",
		Long: `serve keeps running, triggers a sync on SYNC_SCHEDULE (default every Friday 01:00
in SYNC_TIMEZONE) and serves Prometheus metrics on METRICS_PORT. A run is skipped
while the previous one is still in progress.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := buildComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			go func() {
				if err := c.metrics.Serve(ctx, cfg.MetricsPort, logger); err != nil {
					logger.Error("[metrics] server stopped: %v", err)
				}
			}()

			sched := scheduler.New(loc, logger)
			next, err := sched.Add(cfg.Schedule, func() { runOnce(ctx, c) })
			if err != nil {
				return err
			}
			sched.Start()
			logger.Info("[app] schedule %q in %s, next run at %s", cfg.Schedule, loc, next.Format(time.RFC3339))

			if runNow {
				sched.RunNow()
			}

			<-ctx.Done()
			logger.Info("[app] shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := sched.Stop(shutdownCtx); err != nil {
				logger.Warn("[app] a sync was still running at shutdown: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Trigger one sync immediately in addition to the schedule")
	return cmd
}
