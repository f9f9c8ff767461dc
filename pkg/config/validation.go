package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// validate validates the configuration.
func validate(config *Config) error {
	if err := validatePorts(config.Ports); err != nil {
		return fmt.Errorf("ports config: %w", err)
	}
	if err := validateSession(&config.Session); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	if err := validateWeb(&config.Web); err != nil {
		return fmt.Errorf("web config: %w", err)
	}
	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func validatePorts(ports []PortConfig) error {
	if len(ports) == 0 {
		return fmt.Errorf("at least one port must be configured")
	}
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if p.Service == "" {
			return fmt.Errorf("service name cannot be empty")
		}
		if p.Address == "" {
			return fmt.Errorf("port %s: address cannot be empty", p.Service)
		}
		if seen[p.Service] {
			return fmt.Errorf("duplicate service %q", p.Service)
		}
		seen[p.Service] = true
	}
	return nil
}

func validateSession(config *SessionConfig) error {
	if config.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval must be positive")
	}
	if config.HeartbeatTimeout <= config.HeartbeatInterval {
		return fmt.Errorf("heartbeat_timeout must exceed heartbeat_interval")
	}
	if config.AckTimeout <= 0 {
		return fmt.Errorf("ack_timeout must be positive")
	}
	if _, err := cron.ParseStandard(config.ReaperInterval); err != nil {
		return fmt.Errorf("invalid reaper_interval schedule %q: %w", config.ReaperInterval, err)
	}
	return nil
}

func validateWeb(config *WebConfig) error {
	if !config.Enabled {
		return nil
	}
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d", config.Port)
	}
	return nil
}

func validateLogging(config *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			config.Level, strings.Join(validLevels, ", "))
	}

	validFormats := []string{"console", "json"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)",
			config.Format, strings.Join(validFormats, ", "))
	}

	if config.MaxSize < 1 {
		return fmt.Errorf("max_size must be at least 1")
	}
	if config.MaxBackups < 0 {
		return fmt.Errorf("max_backups cannot be negative")
	}
	if config.MaxAge < 0 {
		return fmt.Errorf("max_age cannot be negative")
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
