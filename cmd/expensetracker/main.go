package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/categories"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/mcpserver"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel())
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	srv := mcpserver.New(store, categories.NewProvider(cfg.CategoriesPath))

	switch cfg.Transport {
	case config.TransportHTTP:
		runHTTP(cfg, srv, logger)
	default:
		logger.Info("Starting expense tracker on stdio", "db_path", cfg.SQLiteDBPath)
		if err := srv.ServeStdio(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Server stopped")
}

func runHTTP(cfg *config.Config, srv *mcpserver.Server, logger *slog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := srv.StreamableHTTP()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker on HTTP", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)
		if err := httpSrv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
}
