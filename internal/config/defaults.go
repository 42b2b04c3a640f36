package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.rpc_port", 5005)
	v.SetDefault("server.ws_port", 6006)
	v.SetDefault("server.admin", false)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Ledger state defaults
	v.SetDefault("database.backend", BackendPebble)
	v.SetDefault("database.path", "./data/state")
	v.SetDefault("database.compression", "lz4")
	v.SetDefault("database.cache_size", 64)
	v.SetDefault("database.cache_entries", 4096)

	// History defaults
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "./data/history.db")
	v.SetDefault("history.max_open_conns", 0)
	v.SetDefault("history.max_idle_conns", 0)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Engine defaults
	v.SetDefault("engine.skip_signature_verification", false)
}

// ApplyDevelopmentDefaults switches to settings suited to a throwaway
// local node: in-memory state, in-memory history and console logs.
func ApplyDevelopmentDefaults(v *viper.Viper) {
	v.SetDefault("database.backend", BackendMemory)
	v.SetDefault("history.dsn", ":memory:")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.level", "debug")
	v.SetDefault("server.admin", true)
}
