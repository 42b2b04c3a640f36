package relationaldb

import (
	"fmt"
	"path/filepath"
	"time"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains history database settings
type Config struct {
	// Driver is "sqlite" or "postgres"
	Driver string `mapstructure:"driver" json:"driver"`

	// DSN is a file path for sqlite and a connection URL for postgres
	DSN string `mapstructure:"dsn" json:"dsn"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"`

	// DefaultTimeout bounds Open's ping and schema setup
	DefaultTimeout time.Duration `mapstructure:"default_timeout" json:"default_timeout"`
}

// NewConfig creates a new Config with sensible defaults
func NewConfig() *Config {
	return &Config{
		Driver:          DriverSQLite,
		DSN:             "history.db",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  30 * time.Second,
	}
}

// SQLiteConfig creates a SQLite configuration for the file at path
func SQLiteConfig(path string) *Config {
	config := NewConfig()
	config.DSN = path
	return config
}

// PostgresConfig creates a PostgreSQL configuration
func PostgresConfig(dsn string) *Config {
	config := NewConfig()
	config.Driver = DriverPostgres
	config.DSN = dsn
	config.MaxOpenConns = 25
	config.MaxIdleConns = 5
	return config
}

// Validate checks the configuration for common errors and normalizes
// driver aliases.
func (c *Config) Validate() error {
	switch c.Driver {
	case "postgres", "postgresql":
		c.Driver = DriverPostgres
	case "sqlite", "sqlite3":
		c.Driver = DriverSQLite
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}

	if c.DSN == "" {
		return ErrMissingDSN
	}
	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.MaxIdleConns < 0 {
		return ErrInvalidMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return ErrMaxIdleExceedsMaxOpen
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// ConnectionString returns the DSN handed to sql.Open.
func (c *Config) ConnectionString() string {
	if c.Driver != DriverSQLite {
		return c.DSN
	}
	if c.DSN == ":memory:" {
		return c.DSN
	}
	return filepath.Clean(c.DSN) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// String returns a representation of the config without credentials
func (c *Config) String() string {
	dsn := c.DSN
	if c.Driver == DriverPostgres {
		dsn = "<redacted>"
	}
	return fmt.Sprintf("Config{Driver: %s, DSN: %s}", c.Driver, dsn)
}
