package config

import "time"

// SQLite driver names as registered with database/sql.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, cgo
)

// ValidDrivers lists all supported storage drivers.
var ValidDrivers = []string{DriverModernc, DriverMattn}

// StorageConfig configures the embedded place database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	Driver       string `yaml:"driver"`       // sqlite (default) or sqlite3
	BusyTimeout  string `yaml:"busy_timeout"` // how long SQLite waits on a locked database
	JournalMode  string `yaml:"journal_mode"` // WAL, DELETE, ...
}

// GetBusyTimeout returns the busy timeout as a duration.
func (s StorageConfig) GetBusyTimeout() time.Duration {
	d, err := time.ParseDuration(s.BusyTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
