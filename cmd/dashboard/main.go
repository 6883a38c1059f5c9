package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/collision-dashboard/internal/adapter/http"
	"github.com/couchcryptid/collision-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/collision-dashboard/internal/config"
	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
	"github.com/couchcryptid/collision-dashboard/internal/dataset"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := dataset.NewLoader(cfg.DataPath, logger, metrics)
	datasets := dataset.NewCache(loader, cfg.DataCacheSize, metrics)

	// The startup dataset must load; a missing or unreadable source is fatal.
	// It stays pinned for the life of the process.
	if _, err := datasets.Preload(ctx, cfg.DataMaxRows); err != nil {
		logger.Error("failed to load dataset", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	svc := dashboard.NewService(datasets, cfg.DataMaxRows, geocoder, dashboard.MapConfig{
		CellPrecision: cfg.MapCellPrecision,
		Style:         cfg.MapStyle,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, datasets, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
