// Package config loads the decode service configuration.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/afero"

	"github.com/qrsnap/qrsnap"
)

// FileName is the configuration file looked up by qrscand.
const FileName = "qrscand.json"

// Config is the decode service configuration. Timeouts are in seconds.
type Config struct {
	Listen               string `json:"listen"`
	MaxPixels            int    `json:"max_pixels"`
	CellsPerSide         int    `json:"cells_per_side"`
	MaxConcurrentDecodes int    `json:"max_concurrent_decodes"`
	MaxUploadBytes       int64  `json:"max_upload_bytes"`
	PlatformFirst        bool   `json:"platform_first"`
	ReadTimeout          int    `json:"read_timeout"`
	WriteTimeout         int    `json:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:               ":8080",
		MaxPixels:            qrsnap.DefaultMaxPixels,
		CellsPerSide:         qrsnap.DefaultCellsPerSide,
		MaxConcurrentDecodes: 4,
		MaxUploadBytes:       8 << 20,
		ReadTimeout:          15,
		WriteTimeout:         15,
	}
}

// Load reads the JSON file at path from fs and merges it over Default. An
// empty path returns the defaults.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	var user Config
	if err := json.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.merge(&user)
	return cfg, cfg.Validate()
}

// merge copies every non-zero field of other over cfg.
func (cfg *Config) merge(other *Config) {
	cfgVal := reflect.ValueOf(cfg).Elem()
	otherVal := reflect.ValueOf(other).Elem()
	for i := 0; i < otherVal.NumField(); i++ {
		field := otherVal.Field(i)
		if field.IsZero() {
			continue
		}
		if dst := cfgVal.Field(i); dst.CanSet() {
			dst.Set(field)
		}
	}
}

// Validate rejects values the service cannot run with.
func (cfg Config) Validate() error {
	switch {
	case cfg.Listen == "":
		return fmt.Errorf("config: listen address is empty")
	case cfg.MaxPixels < 0:
		return fmt.Errorf("config: max_pixels %d is negative", cfg.MaxPixels)
	case cfg.CellsPerSide < 0:
		return fmt.Errorf("config: cells_per_side %d is negative", cfg.CellsPerSide)
	case cfg.MaxConcurrentDecodes < 1:
		return fmt.Errorf("config: max_concurrent_decodes must be at least 1, got %d", cfg.MaxConcurrentDecodes)
	case cfg.MaxUploadBytes < 1:
		return fmt.Errorf("config: max_upload_bytes must be at least 1, got %d", cfg.MaxUploadBytes)
	}
	return nil
}

// Options returns the engine options for cfg.
func (cfg Config) Options() *qrsnap.Options {
	return &qrsnap.Options{
		MaxPixels:    cfg.MaxPixels,
		CellsPerSide: cfg.CellsPerSide,
	}
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (cfg Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(cfg.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (cfg Config) WriteTimeoutDuration() time.Duration {
	return time.Duration(cfg.WriteTimeout) * time.Second
}
