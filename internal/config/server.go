package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// ServerConfig represents the [server] section
type ServerConfig struct {
	Host    string `toml:"host" mapstructure:"host"`         // Listen address
	RPCPort int    `toml:"rpc_port" mapstructure:"rpc_port"` // JSON-RPC over HTTP
	WSPort  int    `toml:"ws_port" mapstructure:"ws_port"`   // WebSocket, 0 disables
	Admin   bool   `toml:"admin" mapstructure:"admin"`       // Enables admin methods

	// CORSOrigins lists the allowed origins; "*" allows any
	CORSOrigins []string `toml:"cors_origins" mapstructure:"cors_origins"`

	ReadTimeout     time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Validate performs validation on the server configuration
func (s *ServerConfig) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("host is required")
	}
	if ip := net.ParseIP(s.Host); ip == nil && !isHostname(s.Host) {
		return fmt.Errorf("invalid host: %s", s.Host)
	}
	if err := validatePort("rpc_port", s.RPCPort, false); err != nil {
		return err
	}
	if err := validatePort("ws_port", s.WSPort, true); err != nil {
		return err
	}
	if s.WSPort != 0 && s.WSPort == s.RPCPort {
		return fmt.Errorf("ws_port and rpc_port must differ, both are %d", s.RPCPort)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	return nil
}

// AllowsOrigin reports whether a browser origin may call the RPC port.
func (s *ServerConfig) AllowsOrigin(origin string) bool {
	for _, o := range s.CORSOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func validatePort(name string, port int, optional bool) error {
	if optional && port == 0 {
		return nil
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}

func isHostname(s string) bool {
	if len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, r := range label {
			if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				return false
			}
		}
	}
	return true
}
