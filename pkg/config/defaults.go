package config

import (
	"strings"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/ezshare/ezshare/internal/bytesize"
	"github.com/ezshare/ezshare/pkg/api"
	"github.com/ezshare/ezshare/pkg/store"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit
// values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyShareDefaults(cfg)
	applySessionDefaults(&cfg.Session)
	applyDatabaseDefaults(&cfg.Database)
	applyAPIDefaults(&cfg.API)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyShareDefaults(cfg *Config) {
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 4 * bytesize.GiB
	}
	// nil means unconfigured; an explicit 0 (store) is preserved.
	if cfg.ZipCompressionLevel == nil {
		level := flate.BestSpeed
		cfg.ZipCompressionLevel = &level
	}
	// SharedPath has no default, it must be configured.
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.Lifetime == 0 {
		cfg.Lifetime = 24 * time.Hour
	}
}

func applyDatabaseDefaults(cfg *store.Config) {
	cfg.ApplyDefaults()
}

func applyAPIDefaults(cfg *api.APIConfig) {
	cfg.ApplyDefaults()
}

// GetDefaultConfig returns a Config struct with all default values applied.
// Useful for generating sample configuration files and for tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: store.Config{
			Type: store.DatabaseTypeSQLite,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
