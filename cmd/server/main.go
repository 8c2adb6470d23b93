package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/welldanyogia/webrana-uploadable/internal/app"
	"github.com/welldanyogia/webrana-uploadable/internal/config"
	"github.com/welldanyogia/webrana-uploadable/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadWithValidation()
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(log)

	slog.Info("Starting upload server...")
	cfg.LogConfig(log)

	configs, err := config.LoadMappingsFile(cfg.UploadMappingsFile)
	if err != nil {
		return err
	}
	slog.Info("upload mappings loaded", slog.Int("count", len(configs)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := app.NewBackend(ctx, cfg)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, configs, backend, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", addr))
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
