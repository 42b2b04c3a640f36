package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
)

// Config represents the complete bountyd configuration
type Config struct {
	// [server] section
	Server ServerConfig `toml:"server" mapstructure:"server"`

	// [database] section, the ledger state store
	Database DatabaseConfig `toml:"database" mapstructure:"database"`

	// [history] section, the transaction history store
	History HistoryConfig `toml:"history" mapstructure:"history"`

	// [log] section
	Log LogConfig `toml:"log" mapstructure:"log"`

	// [engine] section
	Engine EngineConfig `toml:"engine" mapstructure:"engine"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// ConfigPaths holds the paths to configuration files
type ConfigPaths struct {
	Main string // Path to main config file (bountyd.toml)
}

// DefaultConfigPaths returns the default configuration file paths
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{Main: "bountyd.toml"}
}

// ConfigPathsFromDir returns configuration paths for a specific directory
func ConfigPathsFromDir(configDir string) ConfigPaths {
	return ConfigPaths{Main: filepath.Join(configDir, "bountyd.toml")}
}

// GetConfigPath returns the path to the main configuration file. It is
// empty when the configuration was built from defaults only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// RPCAddress returns the host:port the JSON-RPC listener binds to.
func (c *Config) RPCAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.RPCPort))
}

// WSAddress returns the host:port the WebSocket listener binds to, or
// "" when WebSocket is disabled.
func (c *Config) WSAddress() string {
	if c.Server.WSPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.WSPort))
}

// String summarizes the configuration without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("rpc=%s ws=%s admin=%t db=%s history=%s log=%s",
		c.RPCAddress(), c.WSAddress(), c.Server.Admin, c.Database.Backend, c.History.Driver, c.Log.Level)
}
