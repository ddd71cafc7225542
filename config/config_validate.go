package config

import (
	"fmt"
	"net"
	"strings"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateJwt(&cfg.Jwt); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateSession(&cfg.Session); err != nil {
		return fmt.Errorf("session config validation failed: %w", err)
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures Addr contains a valid host:port or :port format. If only a
// port is provided (e.g. ":8090"), the host defaults to "localhost".
// The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		// Check if it's just a port (e.g., ":8090")
		if strings.HasPrefix(server.Addr, ":") {
			port = strings.TrimPrefix(server.Addr, ":")
			host = "localhost" // Default host
		} else {
			return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
		}
	}

	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	return nil
}

func validateJwt(jwt *Jwt) error {
	// 32 bytes is the minimum recommended length for HMAC-SHA256 keys.
	if len(jwt.AuthSecret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 characters, got %d", len(jwt.AuthSecret))
	}
	if jwt.AuthTokenDuration.Duration <= 0 {
		return fmt.Errorf("auth token duration must be positive")
	}
	return nil
}

func validateSession(session *Session) error {
	if session.DbPath == "" {
		return fmt.Errorf("session db path cannot be empty")
	}
	if session.CallTimeout.Duration <= 0 {
		return fmt.Errorf("session call timeout must be positive")
	}
	return nil
}
