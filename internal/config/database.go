package config

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goBountySplit/internal/storage/compression"
	"github.com/LeJamon/goBountySplit/internal/storage/relationaldb"
)

// Ledger state backends
const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
)

// DatabaseConfig represents the [database] section
// Configures the key-value store holding escrows, holdings and
// transaction records.
type DatabaseConfig struct {
	Backend      string `toml:"backend" mapstructure:"backend"`
	Path         string `toml:"path" mapstructure:"path"`
	Compression  string `toml:"compression" mapstructure:"compression"`
	CacheSize    int    `toml:"cache_size" mapstructure:"cache_size"`       // Backend block cache, MB
	CacheEntries int    `toml:"cache_entries" mapstructure:"cache_entries"` // Ledger read cache, entries
}

// Validate performs validation on the database configuration
func (d *DatabaseConfig) Validate() error {
	d.Backend = strings.ToLower(d.Backend)
	switch d.Backend {
	case BackendMemory:
	case BackendPebble, BackendLevelDB:
		if d.Path == "" {
			return fmt.Errorf("path is required for the %s backend", d.Backend)
		}
	default:
		return fmt.Errorf("invalid backend: %s (valid options: memory, pebble, leveldb)", d.Backend)
	}

	if d.Compression != "" {
		if _, err := compression.Get(d.Compression); err != nil {
			return fmt.Errorf("invalid compression %q (valid options: %s)",
				d.Compression, strings.Join(compression.Available(), ", "))
		}
	}
	if d.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", d.CacheSize)
	}
	if d.CacheEntries < 0 {
		return fmt.Errorf("cache_entries must be non-negative, got %d", d.CacheEntries)
	}
	return nil
}

// IsPersistent reports whether ledger state survives a restart.
func (d *DatabaseConfig) IsPersistent() bool {
	return d.Backend != BackendMemory
}

// HistoryConfig represents the [history] section
type HistoryConfig struct {
	Driver       string `toml:"driver" mapstructure:"driver"`
	DSN          string `toml:"dsn" mapstructure:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" mapstructure:"max_idle_conns"`
}

// Validate performs validation on the history configuration
func (h *HistoryConfig) Validate() error {
	_, err := h.RelationalConfig()
	return err
}

// RelationalConfig converts the section to a relationaldb.Config.
func (h *HistoryConfig) RelationalConfig() (*relationaldb.Config, error) {
	cfg := relationaldb.SQLiteConfig(h.DSN)
	if strings.HasPrefix(strings.ToLower(h.Driver), relationaldb.DriverPostgres) {
		cfg = relationaldb.PostgresConfig(h.DSN)
	}
	cfg.Driver = strings.ToLower(h.Driver)
	if h.MaxOpenConns > 0 {
		cfg.MaxOpenConns = h.MaxOpenConns
	}
	if h.MaxIdleConns > 0 {
		cfg.MaxIdleConns = h.MaxIdleConns
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
