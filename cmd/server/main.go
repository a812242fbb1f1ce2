package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akeren/waitlist-api/config"
	"github.com/akeren/waitlist-api/domain"
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := log.NewLoggerFromEnv()

	if err := newServerCommand(logger).Execute(); err != nil {
		logger.Error("Waitlist API exited with error", "error", err)
		os.Exit(1)
	}
}

func newServerCommand(logger *log.Logger) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:           "waitlist-api",
		Short:         "Serve the waitlist HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       config.AppVersion,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, autoMigrate)
		},
	}

	cmd.Flags().BoolVarP(&autoMigrate, "auto-migrate", "m", false, "run gorm auto-migration before serving (development only)")
	return cmd
}

// serve blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests and releases every collaborator.
func serve(ctx context.Context, logger *log.Logger, autoMigrate bool) error {
	logger.Info("Waitlist API starting", "version", config.AppVersion)

	appConfig, err := config.LoadApplicationConfiguration(logger, autoMigrate)
	if err != nil {
		return err
	}
	defer appConfig.Cleanup()

	domain.SetupCoreDomain(appConfig)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(appConfig.RouterService.RunHTTPServer)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return appConfig.RouterService.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Graceful shutdown completed")
	return nil
}
