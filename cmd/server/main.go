package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Satyam-Vyas/order-book/internal/app/server"
	"github.com/Satyam-Vyas/order-book/internal/bootstrap"
	"github.com/Satyam-Vyas/order-book/pkg/config"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.ParseLevel(cfg.App.LogLevel)),
		logger.WithEncoding(cfg.App.LogEncoding),
		logger.WithOutputPaths(cfg.App.LogOutputPaths),
	)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer log.Sync()

	b, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error(err, logger.NewField("action", "bootstrap"))
		os.Exit(1)
	}

	srv := server.NewServer(b)
	if err := srv.Start(ctx); err != nil {
		log.Error(err, logger.NewField("action", "start_server"))
		_ = b.Close(ctx)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	failed := make(chan error, 1)
	go func() { failed <- srv.Wait() }()

	select {
	case sig := <-quit:
		log.Info("Shutting down server...", logger.NewField("signal", sig.String()))
	case err := <-failed:
		if err != nil {
			log.Error(err, logger.NewField("action", "serve"))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.NewField("action", "shutdown"))
	}
	log.Info("Server stopped")
}
