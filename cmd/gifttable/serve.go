package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "gifttable/docs"
	delivery "gifttable/internal/delivery/http"
	"gifttable/internal/delivery/http/controllers"
	"gifttable/internal/delivery/http/middleware"
	"gifttable/internal/repository/postgres"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on startup")

	return cmd
}

func runServe(ctx context.Context, skipMigrate bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("close database", "err", err)
		}
	}()

	if !skipMigrate {
		applied, err := postgres.Migrate(ctx, a.db)
		if err != nil {
			return err
		}
		a.logger.Info("migrations applied", "count", len(applied), "versions", applied)
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Requests:   a.cfg.RateLimitRequests,
		Window:     a.cfg.RateLimitWindow,
		PathPrefix: "/api/",
	})
	go sweepLoop(ctx, limiter, a.cfg.RateLimitWindow)

	handler := delivery.NewRouter(delivery.RouterConfig{
		Logger:         a.logger,
		Metrics:        a.metrics,
		Verifier:       a.verifier,
		RateLimiter:    limiter,
		AllowedOrigins: a.cfg.AllowedOrigins,
		DB:             a.db,
		Auth:           controllers.NewAuthController(a.logger, a.auth),
		Events:         controllers.NewEventController(a.logger, a.events),
		Attendees:      controllers.NewAttendeeController(a.logger, a.attendees),
		GiftItems:      controllers.NewGiftItemController(a.logger, a.giftItems),
		Public:         controllers.NewPublicController(a.logger, a.claims),
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", srv.Addr, "env", a.cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return drain(srv, a.notifier, a.logger, shutdownTimeout)
}

// waiter is satisfied by *services.Notifier.
type waiter interface {
	Wait()
}

// drain stops the server, then blocks until pending notifications are sent.
// Notifications are drained even when the server does not stop in time.
func drain(srv *http.Server, pending waiter, logger *slog.Logger, timeout time.Duration) error {
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	shutdownErr := srv.Shutdown(ctx)

	logger.Info("waiting for pending notifications")
	pending.Wait()
	logger.Info("shutdown complete")

	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}

// sweepLoop drops idle rate limiter entries once per window.
func sweepLoop(ctx context.Context, limiter *middleware.RateLimiter, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			limiter.Sweep()
		}
	}
}
