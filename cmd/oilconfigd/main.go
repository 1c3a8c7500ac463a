// oilconfigd serves resolved consent banner settings over REST and MCP.
// Designed for Cloud Run deployment with stateless operation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oil-config/internal/banner"
	"oil-config/internal/config"
	"oil-config/internal/geo"
	"oil-config/internal/handler"
	"oil-config/internal/middleware"
	"oil-config/internal/release"
	"oil-config/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env files may set LOG_LEVEL and ENVIRONMENT, so load them first
	config.LoadEnv(nil)

	// Initialize structured logger
	logger := initLogger()
	slog.SetDefault(logger)

	// Load configuration
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("banner_keys", len(cfg.Banner)),
		slog.String("geoip_database", cfg.GeoIPDatabase),
		slog.String("release_manifest", cfg.ReleaseManifestURL),
		slog.String("build", release.Normalize(release.Version)),
	)

	// Geolocation is optional; a missing database disables it
	locator, err := geo.Open(cfg.GeoIPDatabase)
	if err != nil {
		return fmt.Errorf("opening geoip database: %w", err)
	}
	defer locator.Close()
	if locator == nil && cfg.GeoIPDatabase != "" {
		logger.Warn("geoip database not found, geolocation disabled",
			slog.String("path", cfg.GeoIPDatabase))
	}

	// Release tracking keeps the default hub path on the newest published release
	tracker := release.NewTracker(release.TrackerConfig{
		ManifestURL: cfg.ReleaseManifestURL,
		Fallback:    release.Version,
		Logger:      logger,
	})
	go tracker.Run(ctx, cfg.ReleaseRefresh)

	store := banner.NewStore(cfg.Banner)
	h := handler.New(store, tracker, logger)

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → logging → cors → session → handler
	// Recovery must be outermost to catch panics from logging middleware
	// CORS answers preflights before session hints are parsed
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.CORS(cfg.AllowedOrigins),
		session.Middleware(locator, logger),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// SIGHUP reloads the banner record without a restart
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	for {
		select {
		case err := <-serverErr:
			if err != http.ErrServerClosed {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("server stopped")
			return nil

		case <-reload:
			reloadBanner(ctx, store, logger)

		case sig := <-shutdown:
			logger.Info("shutdown signal received", slog.String("signal", sig.String()))
			stop()

			// Give outstanding requests time to complete
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				// Force close if graceful shutdown fails
				server.Close()
				return fmt.Errorf("shutdown error: %w", err)
			}

			logger.Info("server stopped")
			return nil
		}
	}
}

// reloadBanner re-reads the configuration and swaps in the new banner record.
// A failed reload keeps serving the previous record.
func reloadBanner(ctx context.Context, store *banner.Store, logger *slog.Logger) {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Error("banner reload failed, keeping previous configuration",
			slog.String("error", err.Error()))
		return
	}
	store.Set(cfg.Banner)
	logger.Info("banner configuration reloaded", slog.Int("banner_keys", len(cfg.Banner)))
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
