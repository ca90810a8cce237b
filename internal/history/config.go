package history

import (
	"path/filepath"

	"codeberg.org/mutker/hostwatch/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm      = 0o755
	defaultDBPath       = "hostwatch.db"
	defaultBatchSize    = 1
	defaultBatchTimeout = 5
	backupDirName       = "backups"
)

type Config struct {
	DBPath  string
	Enabled bool
	// BatchSize is the number of alerts buffered before a write. 1 writes
	// every alert immediately.
	BatchSize int
	// BatchTimeout is the longest a buffered alert waits, in seconds
	BatchTimeout int
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		Enabled:      false, // Disabled by default
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if history is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 1 {
		return errFactory.WithData(ErrInvalidConfig, "batch size must be at least 1")
	}
	if c.BatchSize > 1 && c.BatchTimeout <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "batch timeout must be positive when batching")
	}

	return nil
}

func (c Config) backupDir() string {
	return filepath.Join(filepath.Dir(c.DBPath), backupDirName)
}
