package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Auto-resolve stale disputes once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.sweep.SweepOnce(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("sweep complete",
			"skipped", report.Skipped,
			"resolved", report.Resolved,
			"failed", report.Failed,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
