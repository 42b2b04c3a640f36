package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) ConfigPaths {
	t.Helper()
	paths := ConfigPathsFromDir(t.TempDir())
	require.NoError(t, os.WriteFile(paths.Main, []byte(content), 0644))
	return paths
}

func TestLoadConfig(t *testing.T) {
	paths := writeConfig(t, `
[server]
host = "0.0.0.0"
rpc_port = 8080
ws_port = 8081
admin = true

[database]
backend = "leveldb"
path = "/tmp/bountyd/state"
compression = "none"

[history]
driver = "postgresql"
dsn = "postgres://bounty@localhost/bounty?sslmode=disable"

[log]
level = "DEBUG"
format = "console"
`)

	config, err := LoadConfig(paths)
	require.NoError(t, err)

	assert.Equal(t, paths.Main, config.GetConfigPath())
	assert.Equal(t, "0.0.0.0:8080", config.RPCAddress())
	assert.Equal(t, "0.0.0.0:8081", config.WSAddress())
	assert.True(t, config.Server.Admin)
	assert.Equal(t, BackendLevelDB, config.Database.Backend)
	assert.Equal(t, "none", config.Database.Compression)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "console", config.Log.Format)

	rel, err := config.History.RelationalConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", rel.Driver)
	assert.Equal(t, 25, rel.MaxOpenConns)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(ConfigPaths{})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5005", config.RPCAddress())
	assert.Equal(t, "127.0.0.1:6006", config.WSAddress())
	assert.False(t, config.Server.Admin)
	assert.Equal(t, []string{"*"}, config.Server.CORSOrigins)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, BackendPebble, config.Database.Backend)
	assert.Equal(t, "lz4", config.Database.Compression)
	assert.True(t, config.Database.IsPersistent())
	assert.Equal(t, "sqlite", config.History.Driver)
	assert.Equal(t, "info", config.Log.Level)
	assert.False(t, config.Engine.SkipSignatureVerification)
}

func TestLoadDevelopmentConfig(t *testing.T) {
	config, err := LoadDevelopmentConfig(ConfigPaths{})
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, config.Database.Backend)
	assert.False(t, config.Database.IsPersistent())
	assert.Equal(t, ":memory:", config.History.DSN)
	assert.True(t, config.Server.Admin)
	assert.Equal(t, "console", config.Log.Format)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("BOUNTYD_SERVER_RPC_PORT", "7777")
	t.Setenv("BOUNTYD_LOG_LEVEL", "warn")

	config, err := LoadConfig(ConfigPaths{})
	require.NoError(t, err)
	assert.Equal(t, 7777, config.Server.RPCPort)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(ConfigPathsFromDir(t.TempDir()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Host: "127.0.0.1", RPCPort: 5005, WSPort: 6006},
			Database: DatabaseConfig{Backend: "pebble", Path: "/tmp/state", Compression: "lz4"},
			History:  HistoryConfig{Driver: "sqlite", DSN: ":memory:"},
			Log:      LogConfig{Level: "info", Format: "json"},
		}
	}
	require.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"EmptyHost", func(c *Config) { c.Server.Host = "" }, "host is required"},
		{"BadHost", func(c *Config) { c.Server.Host = "bad host!" }, "invalid host"},
		{"RPCPortZero", func(c *Config) { c.Server.RPCPort = 0 }, "rpc_port"},
		{"WSPortRange", func(c *Config) { c.Server.WSPort = 70000 }, "ws_port"},
		{"SamePorts", func(c *Config) { c.Server.WSPort = 5005 }, "must differ"},
		{"UnknownBackend", func(c *Config) { c.Database.Backend = "rocksdb" }, "invalid backend"},
		{"MissingPath", func(c *Config) { c.Database.Path = "" }, "path is required"},
		{"UnknownCompression", func(c *Config) { c.Database.Compression = "zstd" }, "invalid compression"},
		{"UnknownDriver", func(c *Config) { c.History.Driver = "mysql" }, "invalid database driver"},
		{"MissingDSN", func(c *Config) { c.History.DSN = "" }, "history validation failed"},
		{"BadLevel", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"BadFormat", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"UnsignedOnPublicHost", func(c *Config) {
			c.Server.Host = "0.0.0.0"
			c.Engine.SkipSignatureVerification = true
		}, "loopback"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := ValidateConfig(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestMemoryBackendNeedsNoPath(t *testing.T) {
	d := DatabaseConfig{Backend: "MEMORY"}
	require.NoError(t, d.Validate())
	assert.Equal(t, BackendMemory, d.Backend)
}

func TestAllowsOrigin(t *testing.T) {
	s := ServerConfig{CORSOrigins: []string{"https://app.example.com"}}
	assert.True(t, s.AllowsOrigin("https://APP.example.com"))
	assert.False(t, s.AllowsOrigin("https://evil.example.com"))

	s.CORSOrigins = []string{"*"}
	assert.True(t, s.AllowsOrigin("https://anything.example.com"))
}

func TestConfigPaths(t *testing.T) {
	assert.Equal(t, "bountyd.toml", DefaultConfigPaths().Main)
	assert.Equal(t, filepath.Join("etc", "bountyd.toml"), ConfigPathsFromDir("etc").Main)
}
