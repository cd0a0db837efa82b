package main

import (
	"context"
	"errors"
	"fmt"

	"placebook/internal/config"
	"placebook/internal/geocode"
	"placebook/internal/logging"
	"placebook/internal/photo"
	"placebook/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	cfg          *config.Config
	registry     *prometheus.Registry
	storeMetrics *store.Metrics
)

// prepare loads configuration, starts category logging and registers
// metrics. It runs before every subcommand.
func prepare() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Storage.DatabasePath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Initialize(cfg.Logging.Directory, logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.IsJSON(),
		Categories: cfg.Logging.Categories,
	}); err != nil {
		logger.Warn("Category logging disabled", zap.Error(err))
	}
	logging.Boot("Loaded config %s (db=%s)", configPath, cfg.Storage.DatabasePath)

	registry = prometheus.NewRegistry()
	storeMetrics = store.NewMetrics()
	return storeMetrics.Register(registry)
}

// openStore opens the place store and initializes its schema. Nothing else
// may touch the store until this succeeds.
func openStore(ctx context.Context) (*store.PlaceStore, error) {
	s, err := store.Open(store.Options{
		Path:        cfg.Storage.DatabasePath,
		Driver:      cfg.Storage.Driver,
		BusyTimeout: cfg.Storage.GetBusyTimeout(),
		JournalMode: cfg.Storage.JournalMode,
	}, store.WithMetrics(storeMetrics))
	if err != nil {
		return nil, err
	}
	if err := s.InitializeSchema(ctx); err != nil {
		_ = s.Close()
		logger.Error("Place store unavailable", zap.String("path", cfg.Storage.DatabasePath), zap.Error(err))
		return nil, err
	}
	return s, nil
}

func openLibrary() (*photo.Library, error) {
	return photo.NewLibrary(cfg.Photos.Directory)
}

// newResolver builds the address resolver. Replaced in tests.
var newResolver = func() (geocode.Resolver, error) {
	if !cfg.IsGeocodingEnabled() {
		return nil, errors.New("no address given and geocoding is disabled (set GOOGLE_MAPS_API_KEY or pass --address)")
	}
	client, err := geocode.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, cfg.GetGeocodingTimeout())
	if err != nil {
		return nil, err
	}
	return client, nil
}

// writeMetrics dumps the registry in text exposition format when a
// textfile is configured.
func writeMetrics() error {
	if cfg == nil || registry == nil || cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	logging.CLIDebug("Wrote metrics to %s", cfg.Metrics.Textfile)
	return nil
}
