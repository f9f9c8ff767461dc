package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	tempFile, err := os.CreateTemp("", "test-config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer func() { _ = os.Remove(tempFile.Name()) }()

	_, err = tempFile.WriteString(`
logging:
  level: "info"
`)
	if err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	if err := tempFile.Close(); err != nil {
		t.Logf("warning: tempFile.Close failed: %v", err)
	}

	cfg, err := Load(tempFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if len(cfg.Ports) == 0 {
		t.Fatal("Expected default ports to be populated")
	}

	if cfg.Session.HeartbeatInterval != 2*time.Second {
		t.Errorf("Expected default heartbeat_interval 2s, got %v", cfg.Session.HeartbeatInterval)
	}

	if cfg.Session.HeartbeatTimeout != 30*time.Second {
		t.Errorf("Expected default heartbeat_timeout 30s, got %v", cfg.Session.HeartbeatTimeout)
	}

	if cfg.Web.Port != 8080 {
		t.Errorf("Expected default web port 8080, got %d", cfg.Web.Port)
	}

	if !cfg.Web.Enabled {
		t.Errorf("Expected web to be enabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFullConfig(t *testing.T) {
	tempFile, err := os.CreateTemp("", "test-config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer func() { _ = os.Remove(tempFile.Name()) }()

	configContent := `
ports:
  - service: "rcp-ts1"
    address: ":30009"
  - service: "rtp-ts1"
    address: ":30012"
    rtp: true

session:
  heartbeat_interval: "1s"
  heartbeat_timeout: "15s"
  ack_timeout: "3s"
  reaper_interval: "*/1 * * * *"

web:
  enabled: false
  port: 9090

blocklist:
  enabled: true
  radio_ids:
    - 1234
    - 5678

logging:
  level: "debug"
  format: "json"
  file: "/var/log/hylink-adk.log"
`

	_, err = tempFile.WriteString(configContent)
	if err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	if err := tempFile.Close(); err != nil {
		t.Logf("warning: tempFile.Close failed: %v", err)
	}

	cfg, err := Load(tempFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if len(cfg.Ports) != 2 {
		t.Fatalf("Expected 2 ports, got %d", len(cfg.Ports))
	}
	if cfg.Ports[1].Service != "rtp-ts1" || !cfg.Ports[1].RTP {
		t.Errorf("Expected rtp-ts1 RTP port, got %+v", cfg.Ports[1])
	}

	if cfg.Session.HeartbeatInterval != time.Second {
		t.Errorf("Expected heartbeat_interval 1s, got %v", cfg.Session.HeartbeatInterval)
	}

	if cfg.Web.Enabled {
		t.Errorf("Expected web to be disabled")
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("Expected web port 9090, got %d", cfg.Web.Port)
	}

	if !cfg.Blocklist.Enabled {
		t.Errorf("Expected blocklist to be enabled")
	}
	if len(cfg.Blocklist.RadioIDs) != 2 {
		t.Errorf("Expected 2 blocked radio IDs, got %d", len(cfg.Blocklist.RadioIDs))
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected log format 'json', got '%s'", cfg.Logging.Format)
	}
	if cfg.Logging.File != "/var/log/hylink-adk.log" {
		t.Errorf("Expected log file '/var/log/hylink-adk.log', got '%s'", cfg.Logging.File)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		expectErr bool
		errorMsg  string
	}{
		{
			name: "Invalid web port",
			config: `
web:
  enabled: true
  port: 70000
`,
			expectErr: true,
			errorMsg:  "invalid port",
		},
		{
			name: "Invalid log level",
			config: `
logging:
  level: "invalid"
`,
			expectErr: true,
			errorMsg:  "invalid log level",
		},
		{
			name: "Invalid reaper schedule",
			config: `
session:
  heartbeat_interval: "2s"
  heartbeat_timeout: "30s"
  ack_timeout: "5s"
  reaper_interval: "not a schedule"
`,
			expectErr: true,
			errorMsg:  "invalid reaper_interval",
		},
		{
			name: "Valid config",
			config: `
logging:
  level: "info"
`,
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempFile, err := os.CreateTemp("", "test-config-*.yaml")
			if err != nil {
				t.Fatalf("Failed to create temp file: %v", err)
			}
			defer func() { _ = os.Remove(tempFile.Name()) }()

			_, err = tempFile.WriteString(tt.config)
			if err != nil {
				t.Fatalf("Failed to write temp file: %v", err)
			}
			if err := tempFile.Close(); err != nil {
				t.Logf("warning: tempFile.Close failed: %v", err)
			}

			_, err = Load(tempFile.Name())

			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error containing '%s', but got none", tt.errorMsg)
				} else if !containsSubstring(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
			}
		})
	}
}

func containsSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
