package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level host configuration.
type Config struct {
	Ports     []PortConfig    `mapstructure:"ports"`
	Session   SessionConfig   `mapstructure:"session"`
	Blocklist BlocklistConfig `mapstructure:"blocklist"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Web       WebConfig       `mapstructure:"web"`
}

// PortConfig describes one UDP service port to bind.
type PortConfig struct {
	Service string `mapstructure:"service"` // e.g. "rcp-ts1", "rtp-ts1", "rrs1"
	Address string `mapstructure:"address"` // host:port to bind
	RTP     bool   `mapstructure:"rtp"`     // true for voice ports
}

// SessionConfig holds the handshake/heartbeat timing shared by every
// bound port.
type SessionConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration `mapstructure:"heartbeat_timeout"`
	AckTimeout        time.Duration `mapstructure:"ack_timeout"`
	// ReaperInterval is the standard 5-field cron schedule on which stale
	// ack registrations (SendAsync callbacks and WaitAck calls) are swept.
	ReaperInterval string `mapstructure:"reaper_interval"`
}

// BlocklistConfig seeds the radio-ID blocklist at startup.
type BlocklistConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	RadioIDs []uint32 `mapstructure:"radio_ids"`
}

// LoggingConfig configures the zap/lumberjack logger.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// WebConfig holds the read-only monitoring dashboard configuration.
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Load loads configuration from configFile (or the default search path
// when empty) and environment variables prefixed HYLINK_.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/hylink-adk")
	}

	viper.SetEnvPrefix("HYLINK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file is fine; defaults apply.
		} else if os.IsNotExist(err) {
			// Explicitly named file that doesn't exist: also fine.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("ports", defaultPorts())

	viper.SetDefault("session.heartbeat_interval", "2s")
	viper.SetDefault("session.heartbeat_timeout", "30s")
	viper.SetDefault("session.ack_timeout", "5s")
	viper.SetDefault("session.reaper_interval", "*/1 * * * *")

	viper.SetDefault("blocklist.enabled", true)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 28)

	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)
}

func defaultPorts() []map[string]interface{} {
	return []map[string]interface{}{
		{"service": "rrs1", "address": ":30001", "rtp": false},
		{"service": "lp1", "address": ":30003", "rtp": false},
		{"service": "tp1", "address": ":30005", "rtp": false},
		{"service": "tmp1", "address": ":30007", "rtp": false},
		{"service": "rcp-ts1", "address": ":30009", "rtp": false},
		{"service": "rcp-ts2", "address": ":30010", "rtp": false},
		{"service": "rtp-ts1", "address": ":30012", "rtp": true},
		{"service": "rtp-ts2", "address": ":30014", "rtp": true},
	}
}
