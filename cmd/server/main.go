package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/ticketsheet/internal/config"
	"github.com/JonMunkholm/ticketsheet/internal/core"
	"github.com/JonMunkholm/ticketsheet/internal/logging"
	"github.com/JonMunkholm/ticketsheet/internal/store"
	"github.com/JonMunkholm/ticketsheet/internal/web"
	"github.com/JonMunkholm/ticketsheet/internal/workbook"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	records, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open ticket store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service := core.NewService(records, workbook.Decode, core.ServiceOptions{
		MaxConcurrentSaves: cfg.Upload.MaxConcurrent,
		MaxSaveWait:        cfg.Upload.MaxWaitTime,
		SaveTimeout:        cfg.Upload.Timeout,
	})

	server := web.NewServer(service, cfg)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionJanitor(jobCtx, core.JanitorConfig{
		TTL:           cfg.Session.TTL,
		CheckInterval: cfg.Session.SweepInterval,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight saves finish their current chunks
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for saves to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("saves did not complete in time", "error", err)
			} else {
				slog.Info("all saves completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		closeStore()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
