package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	chiTransport "github.com/kailas-cloud/boostlab/internal/transport/chi"
	healthuc "github.com/kailas-cloud/boostlab/internal/usecase/health"
	"github.com/kailas-cloud/boostlab/internal/version"
)

type serveOptions struct {
	port int
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the retrieval HTTP API",
		Long: `Serve GET /health, POST /search and GET /metrics over the configured backend.

Examples:
  boostlab serve
  boostlab serve --backend bleve --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 0, "HTTP port (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := a.cfg.HTTP.Port
	if opts.port > 0 {
		port = opts.port
	}
	a.logger.Info("Starting boostlab API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", port),
		zap.String("backend", a.cfg.Backend.Name),
	)

	svc, ready, err := a.searchService(ctx)
	if err != nil {
		return err
	}
	defaults, err := boost.New(a.cfg.Search.Boosts)
	if err != nil {
		return err
	}

	// Pass a nil interface, not a typed nil pointer, when there is no database.
	var pinger healthuc.DBPinger
	if a.store != nil {
		pinger = a.store
	}
	health := healthuc.New(pinger, ready)

	server := chiTransport.NewServer(svc, health, a.logger).WithDefaults(defaults, a.cfg.Search.Limit)
	if len(a.cfg.Database.Addrs) > 0 {
		if profiles, err := a.profileRepo(ctx); err == nil {
			server = server.WithProfiles(profiles)
		} else {
			a.logger.Warn("Boost profiles unavailable", zap.Error(err))
		}
	}

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error during shutdown", zap.Error(err))
	}

	a.logger.Info("Server stopped gracefully")
	return nil
}
