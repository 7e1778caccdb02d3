package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"finance-tracker/internal/logger"
	"finance-tracker/internal/middleware"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maintenanceInterval = time.Hour

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the REST API. With --with-worker the notification worker and the
deadline scheduler run in the same process.`,
		RunE: runServe,
	}

	cmd.Flags().Bool("with-worker", false, "also run the notification worker and deadline scheduler")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	withWorker, _ := cmd.Flags().GetBool("with-worker")
	l := slog.Default()

	a, err := newApp(cfg, l)
	if err != nil {
		return err
	}
	defer a.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      a.httpHandler(rateLimiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		l.Info("http server listening", "addr", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		l.Info("shutting down http server", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return rateLimiter.Run(ctx)
	})

	maintenance := a.maintenance()
	g.Go(func() error {
		return runEvery(ctx, maintenanceInterval, func(ctx context.Context) {
			if err := maintenance.Cleanup(ctx, time.Now()); err != nil {
				l.ErrorContext(ctx, "maintenance cleanup failed", logger.FieldError, err)
			}
		})
	})

	if withWorker {
		worker := a.jobWorker()
		scanner := a.deadlineScanner()
		g.Go(func() error { return worker.Run(ctx) })
		g.Go(func() error { return scanner.Run(ctx) })
	}

	return g.Wait()
}

// runEvery calls fn on every tick until ctx is done
func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn(ctx)
		}
	}
}
