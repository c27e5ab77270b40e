package store

import (
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
)

const (
	defaultDirPerm       = 0o755
	defaultDBPath        = "/var/lib/droidmon/latest.db"
	defaultBatchSize     = 64
	defaultFlushInterval = 2 * time.Second
)

type Config struct {
	DBPath          string
	Enabled         bool
	BatchSize       int
	FlushInterval   time.Duration
	BackupOnMigrate bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:        defaultDBPath,
		Enabled:       false, // Disabled by default
		BatchSize:     defaultBatchSize,
		FlushInterval: defaultFlushInterval,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate the rest if the store is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 1 {
		return errFactory.WithMessage(ErrInvalidConfig, "batch size must be positive")
	}
	if c.FlushInterval <= 0 {
		return errFactory.WithMessage(ErrInvalidConfig, "flush interval must be positive")
	}
	return nil
}
