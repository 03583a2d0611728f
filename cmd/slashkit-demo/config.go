package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config is the demo bot configuration. Values may reference environment
// variables with ${VAR}; they are expanded before parsing.
type config struct {
	// Token is the bot token. Usually "${DISCORD_TOKEN}".
	Token string `yaml:"token"`

	// AppID is the application ID commands are published under.
	AppID string `yaml:"app_id"`

	// GuildID scopes all demo commands to one guild for instant updates.
	// Empty publishes globally (subject to Discord's propagation delay).
	GuildID string `yaml:"guild_id"`

	// RedisURL enables the redis-backed registration checksum store.
	RedisURL string `yaml:"redis_url"`

	// ForceSync republishes commands even when unchanged.
	ForceSync bool `yaml:"force_sync"`

	// MetricsAddr serves prometheus metrics when set (e.g. ":9100").
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`
}

// loadConfig reads the YAML config file, expanding ${ENV} references.
// A missing path falls back to environment variables only.
func loadConfig(path string) (*config, error) {
	cfg := &config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv("DISCORD_TOKEN")
	}
	if cfg.AppID == "" {
		cfg.AppID = os.Getenv("DISCORD_APP_ID")
	}
	if cfg.GuildID == "" {
		cfg.GuildID = os.Getenv("DISCORD_GUILD_ID")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is not set (config token or DISCORD_TOKEN)")
	}
	if cfg.AppID == "" {
		return nil, fmt.Errorf("application id is not set (config app_id or DISCORD_APP_ID)")
	}
	return cfg, nil
}
