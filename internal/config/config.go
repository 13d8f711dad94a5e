package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CARELOG_SERVER_PORT.
const EnvPrefix = "carelog"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Transport TransportConfig `yaml:"transport"`
	Locale    LocaleConfig    `yaml:"locale"`
	Audit     AuditConfig     `yaml:"audit"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, sends logs to a size-capped file instead of the console.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// DefaultAuthor labels writes when auth is disabled.
	DefaultAuthorID    string `yaml:"default_author_id" split_words:"true"`
	DefaultAuthorLabel string `yaml:"default_author_label" split_words:"true"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type LocaleConfig struct {
	// TimeZone is an IANA name. Bucket dates are computed in this zone.
	TimeZone string `yaml:"time_zone" split_words:"true"`
}

type AuditConfig struct {
	DefaultLimit     int `yaml:"default_limit" split_words:"true"`
	HistoryPerRecord int `yaml:"history_per_record" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "carelog.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			Enabled:            true,
			DefaultAuthorID:    "local",
			DefaultAuthorLabel: "Staff",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Locale: LocaleConfig{
			TimeZone: "Local",
		},
		Audit: AuditConfig{
			DefaultLimit:     100,
			HistoryPerRecord: 50,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file named by
// CARELOG_CONFIG_PATH, and CARELOG_* environment variables, in that order.
func Load() (Config, error) {
	return LoadFile(os.Getenv("CARELOG_CONFIG_PATH"))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q (want http or stdio)", c.Transport.Mode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Locale.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.Locale.TimeZone, err)
	}
	return loc, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
