package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/psdrun"
	httpAdapter "github.com/aretw0/psdrun/pkg/adapters/http"
	"github.com/aretw0/psdrun/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves prototype sessions over a JSON API: create a session from a layer
dump, load an interaction config, click through it and stream state diffs
over SSE. Prometheus metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		manager, cleanup, err := buildManager(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}

		sessionOpts := []psdrun.Option{
			psdrun.WithLogger(logger),
			psdrun.WithLifecycleHooks(metrics.Hooks().Merge(observability.LogHooks(logger))),
		}
		if cfg.Server.AsyncRender {
			sessionOpts = append(sessionOpts, psdrun.WithAsyncRender())
		}
		hub := psdrun.NewHub(
			psdrun.WithManager(manager),
			psdrun.WithHubLogger(logger),
			psdrun.WithSessionOptions(sessionOpts...),
			psdrun.WithSessionHooks(
				func(*psdrun.Session) { metrics.SessionOpened() },
				func(*psdrun.Session) { metrics.SessionClosed() },
			),
		)

		handler := httpAdapter.NewHandler(hub,
			httpAdapter.WithManager(manager),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithCORSOrigins(cfg.Server.CORSOrigins...),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)
		srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("psdrun server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down", "timeout", cfg.Server.Shutdown)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Shutdown)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "err", err)
			srv.Close()
		}
		if err := hub.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			logger.Error("failed to persist sessions", "err", err)
		}
		logger.Info("psdrun server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides server.addr)")
}
