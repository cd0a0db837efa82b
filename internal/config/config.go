package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all placebook configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Place store
	Storage StorageConfig `yaml:"storage"`

	// Captured photo library
	Photos PhotosConfig `yaml:"photos"`

	// Reverse geocoding and map previews
	Geocoding GeocodingConfig `yaml:"geocoding"`

	// Prometheus textfile export
	Metrics MetricsConfig `yaml:"metrics"`

	Logging LoggingConfig `yaml:"logging"`
}

// PhotosConfig configures where captured photos are copied.
type PhotosConfig struct {
	Directory string `yaml:"directory"`
}

// GeocodingConfig configures the reverse geocoding collaborator.
type GeocodingConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// MetricsConfig configures metrics export. An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "placebook",
		Version: "1.0.0",

		Storage: StorageConfig{
			DatabasePath: "data/places.db",
			Driver:       DriverModernc,
			BusyTimeout:  "5s",
			JournalMode:  "WAL",
		},

		Photos: PhotosConfig{
			Directory: "data/photos",
		},

		Geocoding: GeocodingConfig{
			Enabled: true,
			BaseURL: "https://maps.googleapis.com",
			Timeout: "10s",
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			Directory: "data/logs",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file readable only by its owner.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PLACEBOOK_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if driver := os.Getenv("PLACEBOOK_DB_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if dir := os.Getenv("PLACEBOOK_PHOTO_DIR"); dir != "" {
		c.Photos.Directory = dir
	}
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		c.Geocoding.APIKey = key
	}
	if path := os.Getenv("PLACEBOOK_METRICS_TEXTFILE"); path != "" {
		c.Metrics.Textfile = path
	}
}

// GetGeocodingTimeout returns the geocoding HTTP timeout as a duration.
func (c *Config) GetGeocodingTimeout() time.Duration {
	d, err := time.ParseDuration(c.Geocoding.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.DatabasePath) == "" {
		return fmt.Errorf("storage.database_path must be set (or PLACEBOOK_DB)")
	}

	validDriver := false
	for _, d := range ValidDrivers {
		if c.Storage.Driver == d {
			validDriver = true
			break
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid storage driver: %s (valid: %v)", c.Storage.Driver, ValidDrivers)
	}

	if _, err := time.ParseDuration(c.Storage.BusyTimeout); c.Storage.BusyTimeout != "" && err != nil {
		return fmt.Errorf("invalid storage.busy_timeout %q: %w", c.Storage.BusyTimeout, err)
	}

	return nil
}

// IsGeocodingEnabled returns whether addresses can be resolved from coordinates.
func (c *Config) IsGeocodingEnabled() bool {
	return c.Geocoding.Enabled && c.Geocoding.APIKey != ""
}
