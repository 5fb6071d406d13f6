package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "marketplace",
	Short:         "Task marketplace escrow service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		newLogger(slog.LevelError).Error("command failed", "error", err)
		os.Exit(1)
	}
}
