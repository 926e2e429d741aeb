package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sheetrelay/internal/config"
	"github.com/JonMunkholm/sheetrelay/internal/logging"
	"github.com/JonMunkholm/sheetrelay/internal/metrics"
	"github.com/JonMunkholm/sheetrelay/internal/sheet"
	"github.com/JonMunkholm/sheetrelay/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists. Real environment variables take precedence.
	envErr := godotenv.Load()

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.New(cfg.EffectiveLevel(), cfg.Logging.Format, os.Stdout)
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Debug("no .env file found, using environment variables")
	} else {
		logger.Info("loaded .env file")
	}

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"sheet_host", cfg.Sheet.Host(),
		"fetch_timeout", cfg.Sheet.FetchTimeout,
		"debug", cfg.Server.DebugEnabled(),
		"metrics_enabled", cfg.Metrics.Enabled,
	)
	logger.Debug("effective config", "config", cfg.String())

	if cfg.Sheet.SourceURL() == "" {
		logger.Warn("SHEET_CSV_URL is not set; /data will return 500 until it is configured")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New("sheetrelay")
	}

	fetcher := sheet.NewFetcher(&http.Client{}, cfg.Sheet)
	var observer sheet.Observer
	if m != nil {
		observer = m
	}
	relay := sheet.NewRelay(fetcher, cfg.Sheet, observer, logger)

	server, err := web.NewServer(cfg, relay, m, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("shutting down...", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	logger.Info("server stopped")
}
