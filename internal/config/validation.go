package config

import (
	"fmt"
	"net"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := config.Database.Validate(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := config.History.Validate(); err != nil {
		return fmt.Errorf("history validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}

	// Unsigned transactions are only accepted on a loopback listener
	if config.Engine.SkipSignatureVerification && !isLoopback(config.Server.Host) {
		return fmt.Errorf("skip_signature_verification requires a loopback host, got %s", config.Server.Host)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
