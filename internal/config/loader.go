package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BOUNTYD_SERVER_RPC_PORT.
const EnvPrefix = "BOUNTYD"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (bountyd.toml), if paths.Main is set
// 3. Environment variables (BOUNTYD_ prefix)
func LoadConfig(paths ConfigPaths) (*Config, error) {
	return load(paths, false)
}

// LoadDevelopmentConfig is LoadConfig with development defaults.
func LoadDevelopmentConfig(paths ConfigPaths) (*Config, error) {
	return load(paths, true)
}

func load(paths ConfigPaths, development bool) (*Config, error) {
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)
	if development {
		ApplyDevelopmentDefaults(v)
	}

	// 2. Load main configuration file
	if paths.Main != "" {
		if err := loadMainConfig(v, paths.Main); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	// 3. Set up environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = paths.Main

	// 5. Validate the complete configuration
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadMainConfig loads the main configuration file
func loadMainConfig(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return nil
}
