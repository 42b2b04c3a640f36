package config

import (
	"fmt"
	"strings"
)

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `toml:"format" mapstructure:"format"` // json or console
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	l.Level = strings.ToLower(l.Level)
	if !contains_slice([]string{"debug", "info", "warn", "error"}, l.Level) {
		return fmt.Errorf("invalid log level: %s (valid options: debug, info, warn, error)", l.Level)
	}
	l.Format = strings.ToLower(l.Format)
	if !contains_slice([]string{"json", "console"}, l.Format) {
		return fmt.Errorf("invalid log format: %s (valid options: json, console)", l.Format)
	}
	return nil
}

// EngineConfig represents the [engine] section
type EngineConfig struct {
	// SkipSignatureVerification accepts unsigned transactions. Only for
	// local development.
	SkipSignatureVerification bool `toml:"skip_signature_verification" mapstructure:"skip_signature_verification"`
}

// contains_slice checks if a slice contains a specific string
func contains_slice(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
