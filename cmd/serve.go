package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	httpapi "task-marketplace.com/task-marketplace/internal/http"
	"task-marketplace.com/task-marketplace/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the marketplace HTTP API and the stale-dispute sweep scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sweep.Start(); err != nil {
			return err
		}

		opts := httpapi.Options{
			RateLimitPerMinute: a.cfg.RateLimit,
			CORSOrigins:        a.cfg.CORSOrigins,
			Logger:             a.logger,
		}
		if local, ok := a.blobs.(*storage.LocalStorage); ok && strings.HasPrefix(a.cfg.StoragePublicURL, "/") {
			opts.UploadsDir = local.BasePath()
			opts.UploadsPrefix = a.cfg.StoragePublicURL
		}

		e := echo.New()
		handler := httpapi.NewHandler(a.tasks, a.requests, a.transitions, a.disputes, a.payments, a.logger)
		httpapi.Register(e, handler, opts)

		go func() {
			a.logger.Info("HTTP server listening", "addr", a.cfg.AppURL())
			if err := e.Start(a.cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("server stopped", "error", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(a.cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP server shutdown", "error", err)
		}
		a.sweep.Shutdown(shutdownCtx)

		a.logger.Info("HTTP server and sweep scheduler shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
