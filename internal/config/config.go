// Package config loads the service configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Combat   CombatConfig   `mapstructure:"combat"`
}

// ServerConfig configures the websocket listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	MaxSessions     int           `mapstructure:"max_sessions"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the postgres connection pool. An empty URL
// disables the archive layer.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	MinConns       int32         `mapstructure:"min_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// CombatConfig carries the combat tuning knobs handed to new sessions.
type CombatConfig struct {
	PlayerHP     int `mapstructure:"player_hp"`
	HandSize     int `mapstructure:"hand_size"`
	DiscardLimit int `mapstructure:"discard_limit"`
	RunStages    int `mapstructure:"run_stages"`
}

// Load reads the configuration file at path. A missing file is not an error:
// defaults apply, and any GAMBITION_* environment variable overrides its
// dotted key (GAMBITION_SERVER_ADDRESS overrides server.address).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_sessions", 1024)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
	v.SetDefault("combat.player_hp", 100)
	v.SetDefault("combat.hand_size", 8)
	v.SetDefault("combat.discard_limit", 4)
	v.SetDefault("combat.run_stages", 5)

	v.SetEnvPrefix("GAMBITION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Combat.HandSize < 5 {
		return fmt.Errorf("combat.hand_size must be at least 5, got %d", c.Combat.HandSize)
	}
	if c.Combat.PlayerHP <= 0 {
		return fmt.Errorf("combat.player_hp must be positive, got %d", c.Combat.PlayerHP)
	}
	if c.Combat.DiscardLimit < 0 {
		return fmt.Errorf("combat.discard_limit must not be negative, got %d", c.Combat.DiscardLimit)
	}
	if c.Combat.RunStages <= 0 {
		return fmt.Errorf("combat.run_stages must be positive, got %d", c.Combat.RunStages)
	}
	return nil
}
