package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-radar/internal/api"
	"github.com/ndewijer/portfolio-radar/internal/app"
	"github.com/ndewijer/portfolio-radar/internal/config"
	"github.com/ndewijer/portfolio-radar/internal/logging"
	"github.com/ndewijer/portfolio-radar/internal/scheduler"
	"github.com/ndewijer/portfolio-radar/internal/version"
)

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", "console")
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logger.Info().Str("version", version.Version).Msg("Starting portfolio radar")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("Shutdown incomplete")
		}
	}()

	sched, err := scheduler.New(cfg.Refresh.Schedule, a.Services.Refresh, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to configure refresh schedule")
		exitCode = 1
		return
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(a.Services, cfg, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	// Prices are fetched once at startup so the first page load is not at cost.
	a.Services.Refresh.RefreshAsync("startup")

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		exitCode = 1
		return
	}

	logger.Info().Msg("Server exited")
}
