package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/productview/internal/config"
	"github.com/JonMunkholm/productview/internal/core"
	"github.com/JonMunkholm/productview/internal/logging"
	"github.com/JonMunkholm/productview/internal/metrics"
	"github.com/JonMunkholm/productview/internal/source"
	"github.com/JonMunkholm/productview/internal/web"
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

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source", source.Redact(cfg.Source.URL),
		"export_max_concurrent", cfg.Export.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	src, err := source.Open(ctx, cfg.SourceOptions())
	if err != nil {
		slog.Error("failed to open record source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	m := metrics.New()
	service := core.NewService(core.ServiceConfig{
		Exporter:             core.Exporter{Escape: cfg.Export.Escape},
		MaxConcurrentExports: cfg.Export.MaxConcurrent,
		ExportWaitTime:       cfg.Export.MaxWaitTime,
		Recorder:             m,
	})

	// A failed load leaves the store empty; the API keeps serving empty views.
	if _, err := service.Load(ctx, src); err != nil {
		slog.Warn("serving without records", "error", core.FormatUserError(err))
	}

	server := web.NewServer(service, cfg, m)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	go service.StartSessionJanitor(jobCtx, core.SessionConfig{
		IdleTTL:       cfg.Session.IdleTTL,
		CheckInterval: cfg.Session.CheckInterval,
	})

	// SIGHUP reloads records from the source without restarting.
	go func() {
		hupCh := make(chan os.Signal, 1)
		signal.Notify(hupCh, syscall.SIGHUP)
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-hupCh:
				slog.Info("reloading records")
				if _, err := service.Load(jobCtx, src); err != nil {
					slog.Warn("reload failed", "error", core.FormatUserError(err))
				}
			}
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = run(server.Start, sigCh, func() {
		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active exports to complete (with timeout)
		exportStatus := service.ExportLimiterStatus()
		if exportStatus.Active > 0 {
			slog.Info("waiting for exports to complete", "active", exportStatus.Active)
			if err := service.WaitForExports(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			} else {
				slog.Info("all exports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	})
	if err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// run serves until a signal arrives on sigCh, then calls shutdown.
// It returns only after start has returned and shutdown has finished.
func run(start func() error, sigCh <-chan os.Signal, shutdown func()) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sigCh
		shutdown()
	}()

	if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
